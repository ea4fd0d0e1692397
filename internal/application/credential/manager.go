// Package credential manages the guardian password that gates every privileged action.
package credential

import (
	"fmt"

	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/ports"
)

// Manager hashes and verifies the guardian password stored on a device record.
// The raw password is never written to the record.
type Manager struct {
	hasher ports.PasswordHasher
}

// NewManager builds a Manager around a hasher.
func NewManager(hasher ports.PasswordHasher) *Manager {
	return &Manager{hasher: hasher}
}

// SetInitial stores the first guardian password and locks settings editing.
func (m *Manager) SetInitial(rec *domain.DeviceRecord, password string) error {
	if rec.HasCredential() {
		return fmt.Errorf("%w: a guardian password is already set", domain.ErrInvalidState)
	}
	if err := checkPassword(password); err != nil {
		return err
	}
	hash, err := m.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	rec.CredentialHash = &hash
	rec.KeywordsLocked = true
	return nil
}

// Verify reports whether password matches the stored hash. It is false when no hash is set.
func (m *Manager) Verify(rec *domain.DeviceRecord, password string) bool {
	if !rec.HasCredential() {
		return false
	}
	return m.hasher.Compare(*rec.CredentialHash, password)
}

// Change replaces the guardian password. The settings lock is left as is.
func (m *Manager) Change(rec *domain.DeviceRecord, current, next string) error {
	if !m.Verify(rec, current) {
		return fmt.Errorf("%w: incorrect current password", domain.ErrUnauthorized)
	}
	if err := checkPassword(next); err != nil {
		return err
	}
	hash, err := m.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	rec.CredentialHash = &hash
	return nil
}

// Unlock opens settings for editing.
func (m *Manager) Unlock(rec *domain.DeviceRecord, password string) error {
	if !rec.HasCredential() {
		return fmt.Errorf("%w: set a guardian password first", domain.ErrInvalidState)
	}
	if !m.Verify(rec, password) {
		return fmt.Errorf("%w: incorrect password", domain.ErrUnauthorized)
	}
	rec.KeywordsLocked = false
	return nil
}

// Lock closes settings for editing. Locking needs no password.
func (m *Manager) Lock(rec *domain.DeviceRecord) error {
	if !rec.HasCredential() {
		return fmt.Errorf("%w: set a guardian password first", domain.ErrInvalidState)
	}
	rec.KeywordsLocked = true
	return nil
}

// checkPassword rejects passwords the hasher cannot take.
func checkPassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password cannot be empty", domain.ErrEmptyInput)
	}
	if len(password) > domain.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrEmptyInput, domain.MaxPasswordBytes)
	}
	return nil
}
