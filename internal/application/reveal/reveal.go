// Package reveal authorizes disclosure of a filtered assistant reply.
package reveal

import (
	"fmt"

	"github.com/doeshing/kidchat/internal/domain"
)

// Verifier checks the guardian password against a record.
type Verifier interface {
	Verify(rec *domain.DeviceRecord, password string) bool
}

// Authorizer flips a filtered message to revealed once the guardian password checks out.
// Only the latest message of a transcript is ever eligible.
type Authorizer struct {
	verifier Verifier
}

// NewAuthorizer builds an Authorizer.
func NewAuthorizer(verifier Verifier) *Authorizer {
	return &Authorizer{verifier: verifier}
}

// Eligible reports whether the message at index may be revealed, ignoring credentials.
func Eligible(transcript *domain.Transcript, index int) error {
	if index < 0 || index >= transcript.Len() {
		return fmt.Errorf("%w: message %d", domain.ErrNotFound, index)
	}
	if index != transcript.LastIndex() {
		return fmt.Errorf("%w: only the latest message can be revealed", domain.ErrInvalidState)
	}
	if !transcript.Messages[index].RevealEligible() {
		return fmt.Errorf("%w: message is not a hidden filtered reply", domain.ErrInvalidState)
	}
	return nil
}

// LatestEligible returns the index of the revealable message, or -1.
func LatestEligible(transcript *domain.Transcript) int {
	last := transcript.LastIndex()
	if last < 0 || !transcript.Messages[last].RevealEligible() {
		return -1
	}
	return last
}

// Reveal marks the message at index as revealed. There is no way back.
func (a *Authorizer) Reveal(rec *domain.DeviceRecord, transcript *domain.Transcript, index int, password string) error {
	if err := Eligible(transcript, index); err != nil {
		return err
	}
	if !rec.HasCredential() {
		return fmt.Errorf("%w: set a guardian password to enable revealing content", domain.ErrUnauthorized)
	}
	if !a.verifier.Verify(rec, password) {
		return fmt.Errorf("%w: incorrect password", domain.ErrUnauthorized)
	}
	transcript.Messages[index].IsRevealed = true
	return nil
}
