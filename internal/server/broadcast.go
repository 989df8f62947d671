package server

// GetOnlineCount 当前 websocket 关注者数量
func (s *Server) GetOnlineCount() int {
	s.followersMu.RLock()
	defer s.followersMu.RUnlock()
	return len(s.followers)
}

// followerCounts 按牌桌统计关注者数量
func (s *Server) followerCounts() map[string]int {
	s.followersMu.RLock()
	defer s.followersMu.RUnlock()

	counts := make(map[string]int)
	for f := range s.followers {
		counts[f.tableID]++
	}
	return counts
}

func (s *Server) registerFollower(f *Follower) {
	s.followersMu.Lock()
	defer s.followersMu.Unlock()
	s.followers[f] = struct{}{}
}

func (s *Server) unregisterFollower(f *Follower) {
	s.followersMu.Lock()
	defer s.followersMu.Unlock()
	delete(s.followers, f)
}

// closeFollowers 关闭所有关注者连接
func (s *Server) closeFollowers() {
	s.followersMu.RLock()
	defer s.followersMu.RUnlock()
	for f := range s.followers {
		f.Close()
	}
}
