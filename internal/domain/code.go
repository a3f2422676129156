package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	GeneratedCodeLen = 10
	MinCodeLen       = 4
	MaxCodeLen       = 32

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// DefaultReservedCodes collide with page routes and are never handed out.
var DefaultReservedCodes = []string{"DASHBOARD", "LOGIN", "SIGNUP", "AUTH", "MEETING", "API", "STATIC"}

// MeetingCode is the human-readable meeting key. Always upper-case.
type MeetingCode string

// NormalizeCode trims and upper-cases user input so lookups are case-insensitive.
func NormalizeCode(raw string) MeetingCode {
	return MeetingCode(strings.ToUpper(strings.TrimSpace(raw)))
}

func (c MeetingCode) String() string { return string(c) }

// Validate checks the shape of an already normalized code.
func (c MeetingCode) Validate() error {
	if c == "" {
		return ErrCodeRequired
	}
	if len(c) < MinCodeLen || len(c) > MaxCodeLen {
		return fmt.Errorf("%w: length must be %d..%d", ErrInvalidCode, MinCodeLen, MaxCodeLen)
	}
	for _, r := range string(c) {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '-' {
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidCode, r)
		}
	}
	return nil
}

// CodeGenerator produces fixed-length alphanumeric codes outside the reserved set.
type CodeGenerator struct {
	Length   int
	reserved map[MeetingCode]struct{}
}

func NewCodeGenerator(length int, reserved []string) *CodeGenerator {
	if length < MinCodeLen || length > MaxCodeLen {
		length = GeneratedCodeLen
	}
	g := &CodeGenerator{Length: length, reserved: make(map[MeetingCode]struct{}, len(reserved))}
	for _, r := range reserved {
		g.reserved[NormalizeCode(r)] = struct{}{}
	}
	return g
}

func (g *CodeGenerator) IsReserved(c MeetingCode) bool {
	_, ok := g.reserved[c]
	return ok
}

// Generate returns a fresh random code.
func (g *CodeGenerator) Generate() (MeetingCode, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	for {
		var b strings.Builder
		b.Grow(g.Length)
		for i := 0; i < g.Length; i++ {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", fmt.Errorf("generate meeting code: %w", err)
			}
			b.WriteByte(codeAlphabet[n.Int64()])
		}
		code := MeetingCode(b.String())
		if !g.IsReserved(code) {
			return code, nil
		}
	}
}

// ParseCustom normalizes and validates a user supplied code.
func (g *CodeGenerator) ParseCustom(raw string) (MeetingCode, error) {
	code := NormalizeCode(raw)
	if err := code.Validate(); err != nil {
		return "", err
	}
	if g.IsReserved(code) {
		return "", fmt.Errorf("%w: %s is reserved", ErrInvalidCode, code)
	}
	return code, nil
}
