package httpd

type ParseReq struct {
	Payload string `json:"payload" validate:"required"`
}

type BuildReq struct {
	Payload string `json:"payload" validate:"required_without=Address"`
	Address string `json:"address" validate:"required_without=Payload"`
	Name    string `json:"name"`
	Amount  string `json:"amount" validate:"omitempty,numeric"`
	Note    string `json:"note"`
	AutoRef bool   `json:"autoRef"`
}

type ScanReq struct {
	SessionID string `json:"sessionId" validate:"required"`
	Payload   string `json:"payload" validate:"required"`
}

type PayReq struct {
	SessionID string `json:"sessionId" validate:"required"`
	Amount    string `json:"amount" validate:"required,numeric"`
	Note      string `json:"note"`
	AutoRef   bool   `json:"autoRef"`
}

type SessionReq struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type DescriptorItem struct {
	PayeeAddress    string `json:"payeeAddress"`
	PayeeName       string `json:"payeeName,omitempty"`
	Amount          string `json:"amount,omitempty"`
	Note            string `json:"note,omitempty"`
	CurrencyCode    string `json:"currencyCode"`
	MerchantCode    string `json:"merchantCode,omitempty"`
	TransactionRef  string `json:"transactionRef,omitempty"`
	OriginalPayload string `json:"originalPayload"`
	IsMerchant      bool   `json:"isMerchant"`
}

type CandidateItem struct {
	App string `json:"app"`
	URI string `json:"uri"`
}

type BuildResp struct {
	DeepLink   string          `json:"deepLink"`
	LaunchPlan []CandidateItem `json:"launchPlan"`
	Descriptor DescriptorItem  `json:"descriptor"`
}

type SessionResp struct {
	SessionID  string          `json:"sessionId"`
	State      string          `json:"state"`
	Descriptor *DescriptorItem `json:"descriptor,omitempty"`
	DeepLink   string          `json:"deepLink,omitempty"`
	LaunchPlan []CandidateItem `json:"launchPlan,omitempty"`
}

type ErrResp struct {
	Error        string `json:"error"`
	Kind         string `json:"kind,omitempty"`
	RetryAfterMs int64  `json:"retryAfterMs,omitempty"`
}
