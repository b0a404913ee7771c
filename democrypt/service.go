// Package democrypt implements the reference HTTP service the CLI's demo
// subcommands and the HTTP oracle source talk to: a deliberately vulnerable
// PKCS#7 padding validator alongside encrypt/validate endpoints, for
// exercising the attack end to end without a real target.
package democrypt

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dkowalski/padoracle/oracle"
)

// Service wraps a single AES-CBC reference oracle behind HTTP handlers.
type Service struct {
	ref *oracle.AESCBCReference
	iv  []byte
	log zerolog.Logger
}

// NewService builds a Service with a freshly generated key and a static IV,
// mirroring the fixed-IV demo fixtures the original service shipped: the
// static IV makes /demo1, /demo2 and /demo3 return the same ciphertext for
// the life of the process. The key is never persisted, so the ciphertexts
// change when the service restarts.
func NewService(log zerolog.Logger) (*Service, error) {
	key := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	ref, err := oracle.NewAESCBCReference(key)
	if err != nil {
		return nil, err
	}
	return &Service{ref: ref, iv: make([]byte, 16), log: log}, nil
}

// Routes registers the service's handlers on mux.
func (s *Service) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/demo1", s.handleDemo("Hello, world!"))
	mux.HandleFunc("/demo2", s.handleDemo(
		"aaaaaaaaaaaaaaaa"+
			"bbbbbbbbbbbbbbbb"+
			"cccccccccccccccc"+
			"dddddddddddddddd"+
			"eeeeeeeeeeeeeeee",
	))
	mux.HandleFunc("/demo3", s.handleDemo(longDemoText))
	mux.HandleFunc("/encrypt", s.handleEncrypt)
	mux.HandleFunc("/validate", s.handleValidate)
}

type encryptResponse struct {
	CiphertextB64 string `json:"ciphertext_b64"`
	CiphertextHex string `json:"ciphertext_hex"`
}

func (s *Service) writeEncrypted(w http.ResponseWriter, plainText []byte) {
	cipherText, err := s.ref.Encrypt(s.iv, plainText)
	if err != nil {
		s.log.Error().Err(err).Msg("encrypt failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(encryptResponse{
		CiphertextB64: base64.StdEncoding.EncodeToString(cipherText),
		CiphertextHex: hex.EncodeToString(cipherText),
	})
}

func (s *Service) handleDemo(plainText string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeEncrypted(w, []byte(plainText))
	}
}

type encryptRequest struct {
	PlaintextB64 string `json:"plaintext_b64"`
}

func (s *Service) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req encryptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	plainText, err := base64.StdEncoding.DecodeString(req.PlaintextB64)
	if err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.writeEncrypted(w, plainText)
}

type validateRequest struct {
	CiphertextB64 string `json:"ciphertext_b64"`
}

// handleValidate is the vulnerable endpoint: it reveals only a single bit
// (valid padding or not) per request, nothing else.
func (s *Service) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	cipherText, err := base64.StdEncoding.DecodeString(req.CiphertextB64)
	if err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}

	valid, err := s.ref.Validate(cipherText)
	s.log.Debug().Bool("valid", valid).Err(err).Msg("validate")
	if err != nil || !valid {
		http.Error(w, "invalid padding", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

const longDemoText = `Bad stuff happens in the bathroom
I'm just glad that it happens in a vacuum
Can't let them see me with my pants down
Coasters magazine is gonna be my big chance now
But I'll be outta here in no time
I'll be doing interviews and feelin' just fine
Today is gonna be a great day`
