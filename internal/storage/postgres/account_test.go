package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash)
}

func TestCheckPassword_Correct(t *testing.T) {
	hash, err := HashPassword("mypassword")
	assert.NoError(t, err)
	assert.True(t, CheckPassword("mypassword", hash))
}

func TestCheckPassword_Wrong(t *testing.T) {
	hash, err := HashPassword("mypassword")
	assert.NoError(t, err)
	assert.False(t, CheckPassword("wrongpassword", hash))
}

// Property: HashPassword always produces a hash that CheckPassword verifies.
func TestPropertyHashAndCheck(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// bcrypt has a max input length of 72 bytes
		password := rapid.StringMatching(`[a-zA-Z0-9!@#$%^&*]{1,64}`).Draw(t, "password")
		hash, err := HashPassword(password)
		if err != nil {
			t.Fatalf("HashPassword failed: %v", err)
		}
		if !CheckPassword(password, hash) {
			t.Fatalf("CheckPassword failed for password %q", password)
		}
	})
}

func TestValidPrivilege(t *testing.T) {
	assert.True(t, ValidPrivilege(PrivilegeWizard))
	assert.False(t, ValidPrivilege(""))
	assert.False(t, ValidPrivilege("admin"))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("irmen"))
	for _, bad := range []string{"", "ab", "Irmen", "irmen2", "averyveryverylongname", "ir men"} {
		assert.Error(t, ValidateName(bad), bad)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret1"))
	for _, bad := range []string{"", "abc1", "secretpw", "1234567"} {
		assert.Error(t, ValidatePassword(bad), bad)
	}
}

// Property: a password with a letter, a digit and at least 6 characters is accepted.
func TestPropertyValidatePassword(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pw := rapid.StringMatching(`[a-z]{3,30}[0-9]{3,30}`).Draw(t, "password")
		if err := ValidatePassword(pw); err != nil {
			t.Fatalf("ValidatePassword(%q) = %v", pw, err)
		}
	})
}

func TestAccount_HasPrivilege(t *testing.T) {
	acct := Account{Privileges: []string{PrivilegeWizard}}
	assert.True(t, acct.HasPrivilege(PrivilegeWizard))
	assert.False(t, Account{}.HasPrivilege(PrivilegeWizard))
}

// Property: Different passwords produce different hashes (probabilistic, but bcrypt
// includes salt, so even same passwords produce different hashes).
func TestPropertyDifferentPasswordsDifferentHashes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p1 := rapid.StringMatching(`[a-zA-Z]{6,20}`).Draw(t, "password1")
		p2 := rapid.StringMatching(`[a-zA-Z]{6,20}`).Draw(t, "password2")

		h1, err := HashPassword(p1)
		assert.NoError(t, err)
		h2, err := HashPassword(p2)
		assert.NoError(t, err)

		// Hashes should always differ due to unique salts
		assert.NotEqual(t, h1, h2, "bcrypt hashes should differ due to unique salts")
	})
}

// Property: Wrong password never validates.
func TestPropertyWrongPasswordNeverValidates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		correct := rapid.StringMatching(`[a-zA-Z0-9]{6,30}`).Draw(t, "correct")
		wrong := rapid.StringMatching(`[a-zA-Z0-9]{6,30}`).Draw(t, "wrong")

		if correct == wrong {
			return // skip trivial case
		}

		hash, err := HashPassword(correct)
		assert.NoError(t, err)
		assert.False(t, CheckPassword(wrong, hash),
			"wrong password %q should not match hash of %q", wrong, correct)
	})
}
