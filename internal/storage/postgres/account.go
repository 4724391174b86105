package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/cory-johannsen/tale/internal/game/errs"
)

// Privileges an account can be granted.
const (
	PrivilegeWizard = "wizard"
)

// ValidPrivilege reports whether priv is a recognised privilege.
func ValidPrivilege(priv string) bool {
	return priv == PrivilegeWizard
}

var (
	// ErrInvalidPrivilege is returned when an unrecognised privilege is supplied.
	ErrInvalidPrivilege = errors.New("invalid privilege")
	// ErrAccountNotFound is returned when an account lookup yields no results.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when attempting to create a duplicate name.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var nameRe = regexp.MustCompile(`^[a-z]{3,16}$`)

// ValidateName checks an account name: 3 to 16 lowercase letters. The
// error is user facing.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return errs.Refused("Name should be 3 to 16 letters, all lowercase.")
	}
	return nil
}

// ValidatePassword requires at least 6 characters with a letter and a digit.
func ValidatePassword(password string) error {
	var letter, digit bool
	for _, r := range password {
		letter = letter || unicode.IsLetter(r)
		digit = digit || unicode.IsDigit(r)
	}
	if len(password) < 6 || !letter || !digit {
		return errs.Refused("Password should be at least 6 characters and contain a letter and a digit.")
	}
	if len(password) > 72 {
		return errs.Refused("Password is too long.")
	}
	return nil
}

// Account represents a player account in the database.
type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Privileges   []string
	Gender       string
	Race         string
	CreatedAt    time.Time
	LoggedInAt   *time.Time
}

// HasPrivilege reports whether the account was granted priv.
func (a Account) HasPrivilege(priv string) bool {
	for _, p := range a.Privileges {
		if p == priv {
			return true
		}
	}
	return false
}

// NewAccount describes an account to create.
type NewAccount struct {
	Name     string
	Email    string
	Password string
	Gender   string
	Race     string
}

// AccountRepository provides account persistence operations.
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates an AccountRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, name, email, password_hash, privileges, gender, race, created_at, logged_in_at`

func scanAccount(row pgx.Row) (Account, error) {
	var acct Account
	err := row.Scan(&acct.ID, &acct.Name, &acct.Email, &acct.PasswordHash, &acct.Privileges,
		&acct.Gender, &acct.Race, &acct.CreatedAt, &acct.LoggedInAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("scanning account: %w", err)
	}
	return acct, nil
}

// Create inserts a new account with a bcrypt-hashed password.
//
// Precondition: the name and password pass ValidateName and ValidatePassword.
// Postcondition: Returns the created Account with ID and CreatedAt set,
// or ErrAccountExists if the name is taken.
func (r *AccountRepository) Create(ctx context.Context, na NewAccount) (Account, error) {
	if err := ValidateName(na.Name); err != nil {
		return Account{}, err
	}
	if err := ValidatePassword(na.Password); err != nil {
		return Account{}, err
	}
	hash, err := HashPassword(na.Password)
	if err != nil {
		return Account{}, fmt.Errorf("hashing password: %w", err)
	}
	if na.Gender == "" {
		na.Gender = "n"
	}
	if na.Race == "" {
		na.Race = "human"
	}
	acct, err := scanAccount(r.db.QueryRow(ctx,
		`INSERT INTO accounts (name, email, password_hash, gender, race)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+accountColumns,
		na.Name, na.Email, hash, na.Gender, na.Race,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return Account{}, ErrAccountExists
		}
		return Account{}, fmt.Errorf("inserting account: %w", err)
	}
	return acct, nil
}

// Authenticate verifies credentials and records the login time.
//
// Postcondition: Returns the Account if credentials are valid,
// ErrAccountNotFound if the name doesn't exist,
// or ErrInvalidCredentials if the password is wrong.
func (r *AccountRepository) Authenticate(ctx context.Context, name, password string) (Account, error) {
	acct, err := r.GetByName(ctx, name)
	if err != nil {
		return Account{}, err
	}
	if !CheckPassword(password, acct.PasswordHash) {
		return Account{}, ErrInvalidCredentials
	}
	now := time.Now().UTC()
	if _, err := r.db.Exec(ctx, `UPDATE accounts SET logged_in_at = $1 WHERE id = $2`, now, acct.ID); err != nil {
		return Account{}, fmt.Errorf("recording login: %w", err)
	}
	acct.LoggedInAt = &now
	return acct, nil
}

// GetByName retrieves an account by name.
//
// Postcondition: Returns the Account or ErrAccountNotFound.
func (r *AccountRepository) GetByName(ctx context.Context, name string) (Account, error) {
	return scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE name = $1`, name))
}

// List returns all accounts ordered by name.
func (r *AccountRepository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, rows.Err()
}

// Grant adds priv to the account's privileges. Granting twice is a no-op.
//
// Postcondition: Returns ErrInvalidPrivilege or ErrAccountNotFound on failure.
func (r *AccountRepository) Grant(ctx context.Context, name, priv string) error {
	if !ValidPrivilege(priv) {
		return ErrInvalidPrivilege
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts
		 SET privileges = CASE WHEN $1 = ANY(privileges) THEN privileges ELSE array_append(privileges, $1) END
		 WHERE name = $2`,
		priv, name,
	)
	if err != nil {
		return fmt.Errorf("granting %s: %w", priv, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Revoke removes priv from the account's privileges.
func (r *AccountRepository) Revoke(ctx context.Context, name, priv string) error {
	if !ValidPrivilege(priv) {
		return ErrInvalidPrivilege
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET privileges = array_remove(privileges, $1) WHERE name = $2`,
		priv, name,
	)
	if err != nil {
		return fmt.Errorf("revoking %s: %w", priv, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// HashPassword creates a bcrypt hash of the given password.
//
// Precondition: password must be non-empty.
// Postcondition: Returns a bcrypt hash string.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
//
// Postcondition: Returns true if password matches the hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
