package proto

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterUserRequest struct {
	Username string `json:"username"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

type RegisterUserResponse struct {
	Username string `json:"username"`
}

type GetSaltRequest struct {
	Username string `json:"username"`
}

type GetSaltResponse struct {
	Salt []byte `json:"salt"`
}

type LoginRequest struct {
	Username          string `json:"username"`
	VerifierCandidate []byte `json:"verifier_candidate"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Habit mirrors escrow.Habit on the wire. Deadline is unix nanoseconds.
type Habit struct {
	Description string `json:"description"`
	Deadline    int64  `json:"deadline"`
	Deposit     uint64 `json:"deposit"`
	Beneficiary string `json:"beneficiary"`
	Evidence    string `json:"evidence"`
	Approved    bool   `json:"approved"`
}

// AddHabitRequest carries the attached deposit next to the habit fields.
type AddHabitRequest struct {
	Description         string `json:"description"`
	DeadlineExtensionNs int64  `json:"deadline_extension_ns"`
	Beneficiary         string `json:"beneficiary"`
	Deposit             uint64 `json:"deposit"`
}

type AddHabitResponse struct {
	Index int `json:"index"`
}

type UpdateEvidenceRequest struct {
	Index    int    `json:"index"`
	Evidence string `json:"evidence"`
}

type HabitRef struct {
	User  string `json:"user"`
	Index int    `json:"index"`
}

type GetHabitsUserRequest struct {
	User  string `json:"user"`
	From  int    `json:"from"`
	Limit int    `json:"limit"`
}

type GetHabitsUserResponse struct {
	Habits []Habit `json:"habits"`
}

type GetHabitsBeneficiaryRequest struct {
	Beneficiary string `json:"beneficiary"`
	From        int    `json:"from"`
	Limit       int    `json:"limit"`
}

type GetHabitsBeneficiaryResponse struct {
	Users map[string][]Habit `json:"users"`
}

type ContractResponse struct {
	Owner               string `json:"owner"`
	DevFeePercent       uint8  `json:"dev_fee_percent"`
	AcquisitionPeriodNs int64  `json:"acquisition_period_ns"`
	GracePeriodNs       int64  `json:"grace_period_ns"`
	Balance             uint64 `json:"balance"`
	StorageCost         uint64 `json:"storage_cost"`
}

type EvidenceUploadURLRequest struct {
	Index int `json:"index"`
}

type EvidenceUploadURLResponse struct {
	URI string `json:"uri"`
	URL string `json:"url"`
}

type EvidenceDownloadURLResponse struct {
	URL  string `json:"url,omitempty"`
	Text string `json:"text,omitempty"`
}
