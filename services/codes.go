package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	joinCodeBytes = 4 // 8 hex-символов
	ticketBytes   = 6 // 12 hex-символов
)

// CodeGenerator выдаёт коды приглашения в команду и билеты.
type CodeGenerator interface {
	JoinCode() (string, error)
	Ticket() (string, error)
}

type randomCodeGenerator struct{}

// NewRandomCodeGenerator возвращает генератор на crypto/rand.
func NewRandomCodeGenerator() CodeGenerator {
	return randomCodeGenerator{}
}

func (randomCodeGenerator) JoinCode() (string, error) {
	return generateHexCode(joinCodeBytes)
}

func (randomCodeGenerator) Ticket() (string, error) {
	return generateHexCode(ticketBytes)
}

func generateHexCode(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(bytes)), nil
}

// normalizeCode приводит введённый пользователем код к хранимому виду.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
