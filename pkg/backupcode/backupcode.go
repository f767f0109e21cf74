package backupcode

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCount is the number of codes issued per enrollment.
	DefaultCount = 10

	// HashCost is the bcrypt cost factor used for stored code hashes.
	HashCost = 10

	groupLen  = 4
	separator = "-"

	// alphabet omits visually ambiguous characters (0/O, 1/I/L) so codes
	// survive being read aloud or copied from paper.
	alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

var (
	ErrInvalidCount     = errors.New("invalid backup code count, must be greater than 0")
	ErrGenerationFailed = errors.New("failed to generate backup codes")
	ErrHashingFailed    = errors.New("failed to hash backup code")
)

// Generate creates count unique single-use recovery codes in the form
// XXXX-XXXX. The plaintext codes are meant to be shown to the user exactly
// once; only hashes produced by Hash should ever be stored.
func Generate(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidCount
	}

	codes := make([]string, 0, count)
	seen := make(map[string]struct{}, count)
	for len(codes) < count {
		code, err := newCode()
		if err != nil {
			return nil, errors.Join(ErrGenerationFailed, err)
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

// Hash returns a bcrypt hash of the code suitable for storage.
func Hash(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(Normalize(code)), HashCost)
	if err != nil {
		return "", errors.Join(ErrHashingFailed, err)
	}
	return string(hash), nil
}

// Verify reports whether the code matches the stored hash. The comparison is
// constant time via bcrypt; any error collapses to false.
func Verify(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(Normalize(code))) == nil
}

// Normalize maps user input onto the canonical code form: uppercase, no
// surrounding whitespace, a single dash between the two groups.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, " ", "")
	code = strings.ReplaceAll(code, separator, "")
	if len(code) == 2*groupLen {
		code = code[:groupLen] + separator + code[groupLen:]
	}
	return code
}

func newCode() (string, error) {
	var sb strings.Builder
	sb.Grow(2*groupLen + 1)
	for i := range 2 * groupLen {
		if i == groupLen {
			sb.WriteString(separator)
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		sb.WriteByte(alphabet[n.Int64()])
	}
	return sb.String(), nil
}
