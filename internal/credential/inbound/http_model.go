package inbound

type HashRequest struct {
	Password string `json:"password"`
}

type HashResponse struct {
	Hash       string `json:"hash"`
	Algorithm  string `json:"algorithm"`
	Descriptor string `json:"descriptor"`
}

func (HashResponse) Message() string {
	return "Password hashed successfully"
}

type VerifyRequest struct {
	Password string `json:"password"`
	Hash     string `json:"hash"`
}

type VerifyResponse struct {
	Valid       bool `json:"valid"`
	NeedsRehash bool `json:"needs_rehash"`
}

func (VerifyResponse) Message() string {
	return "Password verification completed"
}

type InspectRequest struct {
	Hash string `json:"hash"`
}

type InspectResponse struct {
	Algorithm   string         `json:"algorithm"`
	Descriptor  string         `json:"descriptor"`
	Params      map[string]int `json:"params"`
	SaltLength  int            `json:"salt_length"`
	KeyLength   int            `json:"key_length"`
	NeedsRehash bool           `json:"needs_rehash"`
}

type AlgorithmResponse struct {
	Name       string `json:"name"`
	Descriptor string `json:"descriptor"`
	Available  bool   `json:"available"`
	Configured bool   `json:"configured"`
	Reason     string `json:"reason,omitempty"`
}

type AlgorithmsResponse struct {
	Configured string              `json:"configured"`
	Algorithms []AlgorithmResponse `json:"algorithms"`
}
