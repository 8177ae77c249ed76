package accounts

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted bcrypt hash from the raw password. The cost
// is deliberately non-negligible; login latency from hashing is policy, not
// a defect.
func HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies raw against the stored hash. bcrypt checks the
// hash rather than re-deriving and string-comparing the secret.
func CheckPassword(raw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
