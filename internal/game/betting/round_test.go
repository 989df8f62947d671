package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/holdem-table/internal/game/table"
)

// newPreflop 座位 0 为庄家，1 小盲，2 大盲（双人时 0 小盲 1 大盲）
func newPreflop(t *testing.T, chips ...int64) (*table.Table, *Round) {
	t.Helper()
	players := make([]*table.Player, len(chips))
	for i, c := range chips {
		players[i] = table.NewPlayer(i, string(rune('A'+i)), c, true)
	}
	tbl := table.New(players, 10, 20)
	tbl.Players[0].Dealer = true
	tbl.AnchorSeat = 0
	_, err := tbl.AssignBlinds()
	require.NoError(t, err)
	return tbl, Start(tbl)
}

func act(t *testing.T, r *Round, seat int, kind Kind, amount int64) Applied {
	t.Helper()
	p, ok := r.Next()
	require.True(t, ok, "expected seat %d to act", seat)
	require.Equal(t, seat, p.Seat)
	out, err := r.Apply(Action{Seat: seat, Kind: kind, Amount: amount})
	require.NoError(t, err)
	return out
}

func TestRound_PreflopOrderAndBigBlindOption(t *testing.T) {
	t.Parallel()

	tbl, r := newPreflop(t, 1000, 1000, 1000)

	act(t, r, 0, Call, 0)
	act(t, r, 1, Call, 0)

	// 大盲在无人加注时仍有一次行动机会
	p, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, 2, p.Seat)
	v, ok := r.View(2)
	require.True(t, ok)
	assert.True(t, v.CanCheck)
	assert.Equal(t, int64(0), v.NeedToCall)

	out, err := r.Apply(Action{Seat: 2, Kind: Check})
	require.NoError(t, err)
	assert.Equal(t, Check, out.Kind)

	_, ok = r.Next()
	assert.False(t, ok)
	assert.Equal(t, int64(60), tbl.Pot)
	assert.Equal(t, table.NoSeat, tbl.ActiveSeat)
}

func TestRound_PostflopCheckAround(t *testing.T) {
	t.Parallel()

	tbl, r := newPreflop(t, 1000, 1000, 1000)
	act(t, r, 0, Call, 0)
	act(t, r, 1, Call, 0)
	act(t, r, 2, Check, 0)

	tbl.Phase = table.PhaseFlop
	r = Start(tbl)
	assert.Equal(t, int64(0), tbl.CurrentBet)
	assert.Equal(t, int64(20), tbl.LastRaise)
	for _, p := range tbl.Players {
		assert.Zero(t, p.RoundBet)
	}

	act(t, r, 1, Check, 0)
	act(t, r, 2, Check, 0)
	act(t, r, 0, Check, 0)
	_, ok := r.Next()
	assert.False(t, ok)
}

func TestRound_RaiseBelowMinimumIsCorrected(t *testing.T) {
	t.Parallel()

	tbl, r := newPreflop(t, 1000, 1000, 1000)
	act(t, r, 0, Call, 0)

	// 需跟注 10，最近加注额 20，最小加注投入为 30
	out := act(t, r, 1, Raise, 5)
	assert.Equal(t, Raise, out.Kind)
	assert.Equal(t, int64(30), out.Amount)
	assert.True(t, out.Reopened)
	assert.Equal(t, int64(40), tbl.CurrentBet)
	assert.Equal(t, int64(20), tbl.LastRaise)
	assert.Equal(t, 1, tbl.RaisesThisRound)

	// 加注后已表态的玩家需要重新行动
	p, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, 2, p.Seat)
	assert.Equal(t, ToAct, r.State(0))
}

func TestRound_MinRaiseNeverDecreases(t *testing.T) {
	t.Parallel()

	tbl, r := newPreflop(t, 5000, 5000, 5000)

	last := tbl.LastRaise
	act(t, r, 0, Raise, 60)
	assert.GreaterOrEqual(t, tbl.LastRaise, last)
	last = tbl.LastRaise

	act(t, r, 1, Raise, 90)
	assert.GreaterOrEqual(t, tbl.LastRaise, last)
	last = tbl.LastRaise

	act(t, r, 2, Raise, 500)
	assert.GreaterOrEqual(t, tbl.LastRaise, last)

	assert.Equal(t, 3, tbl.RaisesThisRound)
	assert.Equal(t, int64(520), tbl.CurrentBet)
	assert.Equal(t, int64(420), tbl.LastRaise)
}

func TestRound_ActionCorrections(t *testing.T) {
	t.Parallel()

	tbl, r := newPreflop(t, 1000, 100, 1000)

	// 欠注时过牌视为跟注
	out := act(t, r, 0, Check, 0)
	assert.Equal(t, Call, out.Kind)
	assert.Equal(t, Check, out.Requested)
	assert.True(t, out.Corrected())
	assert.Equal(t, int64(20), out.Amount)

	// 加注额不小于剩余筹码视为全下
	out = act(t, r, 1, Raise, 500)
	assert.Equal(t, AllIn, out.Kind)
	assert.Equal(t, int64(90), out.Amount)
	assert.True(t, tbl.Players[1].AllIn)
	assert.Equal(t, int64(100), tbl.CurrentBet)

	out = act(t, r, 2, Call, 0)
	assert.Equal(t, int64(80), out.Amount)

	out = act(t, r, 0, Call, 0)
	assert.Equal(t, int64(80), out.Amount)

	_, ok := r.Next()
	assert.False(t, ok)
	assert.Equal(t, AllInState, r.State(1))
	assert.Equal(t, Matched, r.State(0))
}

func TestRound_CallWithNothingOwedIsCheck(t *testing.T) {
	t.Parallel()

	_, r := newPreflop(t, 1000, 1000, 1000)
	act(t, r, 0, Call, 0)
	act(t, r, 1, Call, 0)
	out := act(t, r, 2, Call, 0)
	assert.Equal(t, Check, out.Kind)
	assert.Zero(t, out.Amount)
}

func TestRound_IncompleteAllInDoesNotReopen(t *testing.T) {
	t.Parallel()

	tbl, r := newPreflop(t, 1000, 1000, 35)
	act(t, r, 0, Call, 0)
	act(t, r, 1, Call, 0)

	// 大盲剩 15 全下，不足最小加注额 20
	out := act(t, r, 2, AllIn, 0)
	assert.Equal(t, int64(15), out.Amount)
	assert.False(t, out.Reopened)
	assert.Equal(t, int64(35), tbl.CurrentBet)
	assert.Equal(t, int64(20), tbl.LastRaise)
	assert.Zero(t, tbl.RaisesThisRound)

	out = act(t, r, 0, Raise, 500)
	assert.Equal(t, Call, out.Kind)
	assert.Equal(t, int64(15), out.Amount)

	out = act(t, r, 1, AllIn, 0)
	assert.Equal(t, Call, out.Kind)
	assert.Equal(t, int64(15), out.Amount)

	_, ok := r.Next()
	assert.False(t, ok)
	assert.Equal(t, int64(105), tbl.Pot)
}

func TestRound_LoneActionableFacingAllInMustAct(t *testing.T) {
	t.Parallel()

	tbl, r := newPreflop(t, 1000, 1000)

	out := act(t, r, 0, AllIn, 0)
	assert.True(t, out.Reopened)
	assert.Equal(t, int64(1000), tbl.CurrentBet)

	p, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, 1, p.Seat)
	_, err := r.Apply(Action{Seat: 1, Kind: Call})
	require.NoError(t, err)

	_, ok = r.Next()
	assert.False(t, ok)
	assert.Equal(t, int64(2000), tbl.Pot)
}

func TestRound_FoldsEndRound(t *testing.T) {
	t.Parallel()

	tbl, r := newPreflop(t, 1000, 1000, 1000)
	act(t, r, 0, Fold, 0)
	act(t, r, 1, Fold, 0)

	assert.True(t, r.Done())
	_, ok := r.Next()
	assert.False(t, ok)
	assert.Len(t, tbl.InHand(), 1)
	assert.Equal(t, 1, tbl.Players[0].Stats.FoldsPreflop)
}

func TestRound_RejectsOutOfTurn(t *testing.T) {
	t.Parallel()

	_, r := newPreflop(t, 1000, 1000, 1000)

	_, err := r.Apply(Action{Seat: 0, Kind: Call})
	assert.ErrorIs(t, err, ErrNoActiveSeat)

	_, ok := r.Next()
	require.True(t, ok)
	_, err = r.Apply(Action{Seat: 2, Kind: Call})
	assert.ErrorIs(t, err, ErrOutOfTurn)
	_, err = r.Apply(Action{Seat: 0, Kind: "bet"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestRound_ChipsConserved(t *testing.T) {
	t.Parallel()

	tbl, r := newPreflop(t, 1000, 400, 700)
	total := tbl.TotalChips()

	act(t, r, 0, Raise, 100)
	act(t, r, 1, AllIn, 0)
	act(t, r, 2, Call, 0)
	act(t, r, 0, Call, 0)

	assert.Equal(t, total, tbl.TotalChips())
	var bets int64
	for _, p := range tbl.Players {
		bets += p.TotalBet
	}
	assert.Equal(t, tbl.Pot, bets)
}

func TestRound_Stats(t *testing.T) {
	t.Parallel()

	tbl, r := newPreflop(t, 1000, 1000, 1000)
	act(t, r, 0, Raise, 60)
	act(t, r, 1, Call, 0)
	act(t, r, 2, Fold, 0)

	a, b, c := tbl.Players[0].Stats, tbl.Players[1].Stats, tbl.Players[2].Stats
	assert.Equal(t, 1, a.VPIP)
	assert.Equal(t, 1, a.PFR)
	assert.Equal(t, 1, b.VPIP)
	assert.Zero(t, b.PFR)
	assert.Equal(t, 1, c.Folds)

	tbl.Phase = table.PhaseFlop
	r = Start(tbl)
	act(t, r, 1, Check, 0)
	act(t, r, 0, Raise, 100)
	act(t, r, 1, Call, 0)
	assert.Equal(t, 1, tbl.Players[0].Stats.AggressiveActs)
	assert.Equal(t, 1, tbl.Players[1].Stats.Calls)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, err := ParseKind("allin")
	require.NoError(t, err)
	assert.Equal(t, AllIn, k)

	_, err = ParseKind("bet")
	assert.ErrorIs(t, err, ErrUnknownAction)
}
