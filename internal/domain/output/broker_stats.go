package output

// BrokerStats - снимок состояния брокера для /api/v1/stats
type BrokerStats struct {
	WaitingCount int `json:"waitingCount"`
	ActiveRooms  int `json:"activeRooms"`
	SocialRooms  int `json:"socialRooms"`
	Connections  int `json:"connections"`
}
