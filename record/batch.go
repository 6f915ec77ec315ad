package record

import (
	"encoding/json"
	"fmt"

	"aleosdk/account"
)

// Descriptor is one ciphertext record as reported by an external
// indexer: the ciphertext itself plus untrusted chain metadata.
type Descriptor struct {
	RecordCiphertext string   `json:"record_ciphertext"`
	Identifier       string   `json:"identifier"`
	ProgramID        string   `json:"program_id"`
	Height           uint32   `json:"height"`
	Timestamp        int64    `json:"timestamp"`
	BlockHash        string   `json:"block_hash"`
	TransactionID    string   `json:"transaction_id"`
	TransitionID     string   `json:"transition_id"`
	FunctionName     string   `json:"function_name"`
	OutputIndex      uint8    `json:"output_index"`
	Input            []string `json:"input,omitempty"`
}

// Owned is a successfully decrypted record enriched with its serial
// number and the descriptor metadata.
type Owned struct {
	Record       string   `json:"record"`
	Identifier   string   `json:"identifier"`
	SerialNumber string   `json:"serial_number"`
	ProgramID    string   `json:"program_id"`
	Height       uint32   `json:"height"`
	Timestamp    int64    `json:"timestamp"`
	BlockHash    string   `json:"block_hash"`
	TransactionID string  `json:"transaction_id"`
	TransitionID string   `json:"transition_id"`
	FunctionName string   `json:"function_name"`
	OutputIndex  uint8    `json:"output_index"`
	Input        []string `json:"input,omitempty"`

	// Plaintext is the decoded record; not serialized separately.
	Plaintext *Plaintext `json:"-"`
}

// Failure describes one dropped descriptor when diagnostics are
// requested.
type Failure struct {
	Index  int
	Reason error
}

// DecryptRecords decrypts a batch of descriptors with the view key
// derived from the private key and enriches each surviving plaintext
// with its serial number. Best effort: descriptors that fail to parse,
// decrypt, or derive are dropped from the output. Output order follows
// input order.
func DecryptRecords(key *account.PrivateKey, descriptors []Descriptor) []Owned {
	owned, _ := DecryptRecordsWithReport(key, descriptors)
	return owned
}

// DecryptRecordsWithReport is DecryptRecords with a per-item failure
// report for callers that need visibility into dropped descriptors.
func DecryptRecordsWithReport(key *account.PrivateKey, descriptors []Descriptor) ([]Owned, []Failure) {
	viewKey := key.ViewKey()
	owned := make([]Owned, 0, len(descriptors))
	var failures []Failure
	for i, d := range descriptors {
		rec, err := decryptOne(key, viewKey, d)
		if err != nil {
			failures = append(failures, Failure{Index: i, Reason: err})
			continue
		}
		owned = append(owned, *rec)
	}
	return owned, failures
}

func decryptOne(key *account.PrivateKey, viewKey *account.ViewKey, d Descriptor) (*Owned, error) {
	ciphertext, err := ParseCiphertext(d.RecordCiphertext)
	if err != nil {
		return nil, err
	}
	plaintext, err := ciphertext.Decrypt(viewKey)
	if err != nil {
		return nil, err
	}
	serial, err := plaintext.SerialNumber(key, d.ProgramID, d.Identifier)
	if err != nil {
		return nil, err
	}
	return &Owned{
		Record:        plaintext.String(),
		Identifier:    d.Identifier,
		SerialNumber:  serial,
		ProgramID:     d.ProgramID,
		Height:        d.Height,
		Timestamp:     d.Timestamp,
		BlockHash:     d.BlockHash,
		TransactionID: d.TransactionID,
		TransitionID:  d.TransitionID,
		FunctionName:  d.FunctionName,
		OutputIndex:   d.OutputIndex,
		Input:         d.Input,
		Plaintext:     plaintext,
	}, nil
}

// DecryptRecordsJSON is the wire-shaped entry point: descriptors in as
// a JSON array, enriched records out as pretty-printed JSON. Unparseable
// input yields an empty result rather than an error.
func DecryptRecordsJSON(key *account.PrivateKey, descriptorsJSON []byte) (string, error) {
	var descriptors []Descriptor
	if err := json.Unmarshal(descriptorsJSON, &descriptors); err != nil {
		descriptors = nil
	}
	owned := DecryptRecords(key, descriptors)
	out, err := json.MarshalIndent(owned, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding decrypted records failed: %w", err)
	}
	return string(out), nil
}
