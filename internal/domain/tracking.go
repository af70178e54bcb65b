package domain

// TrackingState is the locally persisted view of the bot's orders for one
// token pair. A txHash lives in at most one of the three maps at a time and
// membership in CanceledOrders is permanent: once an order is canceled it is
// never adopted back from on-chain data.
type TrackingState struct {
	BuyOrders      map[string]Order `json:"buy_orders"`
	SellOrders     map[string]Order `json:"sell_orders"`
	CanceledOrders map[string]Order `json:"canceled_orders"`
}

// NewTrackingState returns an empty, well-shaped state.
func NewTrackingState() TrackingState {
	return TrackingState{
		BuyOrders:      make(map[string]Order),
		SellOrders:     make(map[string]Order),
		CanceledOrders: make(map[string]Order),
	}
}

// Heal inserts empty maps for any missing sub-key. Loading a tracking file
// written by an older version, or a corrupted one, must never fail.
func (s *TrackingState) Heal() {
	if s.BuyOrders == nil {
		s.BuyOrders = make(map[string]Order)
	}
	if s.SellOrders == nil {
		s.SellOrders = make(map[string]Order)
	}
	if s.CanceledOrders == nil {
		s.CanceledOrders = make(map[string]Order)
	}
}

// SideOrders returns the map holding open orders of the given side.
func (s TrackingState) SideOrders(side OrderSide) map[string]Order {
	if side == SideBuy {
		return s.BuyOrders
	}
	return s.SellOrders
}

// OpenCount is the number of tracked open orders on one side.
func (s TrackingState) OpenCount(side OrderSide) int {
	return len(s.SideOrders(side))
}

// IsCanceled reports whether the order was canceled at some point.
func (s TrackingState) IsCanceled(txHash string) bool {
	_, ok := s.CanceledOrders[txHash]
	return ok
}
