package wsmodels

// ServerMessage goes to one user when ToUserID is set, otherwise to every session of ToRole in ToOrgID
type ServerMessage struct {
	ToOrgID  string `json:"-"`
	ToRole   string `json:"-"`
	ToUserID string `json:"-"`
	ID       string `json:"id"`
	Time     string `json:"time"` // RFC3339, UTC
	Code     string `json:"code"`
	Msg      string `json:"msg"`
}
