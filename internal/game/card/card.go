package card

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Suit 定义花色
type Suit int

// Rank 定义点数（2..14，A 为 14）
type Rank int

// Card 定义一张牌
type Card struct {
	Suit Suit
	Rank Rank
}

const (
	Club    Suit = iota // 梅花
	Diamond             // 方块
	Heart               // 红心
	Spade               // 黑桃
)

// suitCodes 花色编码映射表
var suitCodes = map[Suit]byte{
	Club:    'C',
	Diamond: 'D',
	Heart:   'H',
	Spade:   'S',
}

func (s Suit) String() string {
	if code, ok := suitCodes[s]; ok {
		return string(code)
	}
	return "?"
}

const (
	Rank2 Rank = iota + 2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	RankT
	RankJ
	RankQ
	RankK
	RankA
)

const rankChars = "23456789TJQKA"

func (r Rank) String() string {
	if r < Rank2 || r > RankA {
		return "?"
	}
	return string(rankChars[r-Rank2])
}

// ErrDeckEmpty 牌堆不足
var ErrDeckEmpty = errors.New("deck has not enough cards")

// String 返回两位编码，如 "AS"、"TD"
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// MarshalText 以编码形式序列化
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText 从编码反序列化
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse 解析两位编码（大小写不敏感）
func Parse(code string) (Card, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return Card{}, fmt.Errorf("无法识别的牌: %q", code)
	}
	idx := strings.IndexByte(rankChars, code[0])
	if idx < 0 {
		return Card{}, fmt.Errorf("无法识别的点数: %c", code[0])
	}
	for s, sc := range suitCodes {
		if sc == code[1] {
			return Card{Suit: s, Rank: Rank2 + Rank(idx)}, nil
		}
	}
	return Card{}, fmt.Errorf("无法识别的花色: %c", code[1])
}

// MustParse 解析多张牌，失败时 panic（仅用于常量与测试）
func MustParse(codes ...string) []Card {
	cards := make([]Card, 0, len(codes))
	for _, code := range codes {
		c, err := Parse(code)
		if err != nil {
			panic(err)
		}
		cards = append(cards, c)
	}
	return cards
}

// Codes 转换为编码列表
func Codes(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// Deck 定义一副牌，下标 0 为牌顶
type Deck []Card

// NewDeck 按点数、花色顺序生成 52 张牌
func NewDeck() Deck {
	deck := make(Deck, 0, 52)
	for r := Rank2; r <= RankA; r++ {
		for s := Club; s <= Spade; s++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle Fisher–Yates 洗牌
func Shuffle(d Deck, rng *rand.Rand) {
	for i := len(d) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d[i], d[j] = d[j], d[i]
	}
}

// Draw 从牌顶发 n 张
func (d *Deck) Draw(n int) ([]Card, error) {
	if n > len(*d) {
		return nil, ErrDeckEmpty
	}
	cards := make([]Card, n)
	copy(cards, (*d)[:n])
	*d = (*d)[n:]
	return cards, nil
}

// Burn 烧掉牌顶一张
func (d *Deck) Burn() error {
	_, err := d.Draw(1)
	return err
}
