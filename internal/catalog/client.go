package catalog

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/arung-agamani/soundvault/internal/apperr"
	"github.com/arung-agamani/soundvault/internal/bus"
	"github.com/arung-agamani/soundvault/internal/ids"
)

// Role is a Client's access level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Client is a catalog API consumer: a person or device holding a
// rotatable API secret and a login token that is exchanged for an API
// token (the login token itself stays valid). Never serialized to
// JSON directly; the gateway's clientView controls what leaves the
// process.
type Client struct {
	ID            string
	Name          string
	Role          Role
	APISecretHash string
	LoginToken    string
}

// ClientWithToken is returned only at creation/rotation time, the one
// moment the plaintext secret is ever available.
type ClientWithToken struct {
	Client
	PlainToken string // "{id}-{secret}", present once
}

type NewClientParams struct {
	Name string
	Role Role
}

// ClientRepo is the Client entity's repository.
type ClientRepo struct {
	db  *sql.DB
	bus *bus.Bus
}

// CountByRole reports how many clients hold the given role, used at boot
// to decide whether the default admin needs seeding.
func (r *ClientRepo) CountByRole(ctx context.Context, role Role) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(internal_id) FROM clients WHERE role = ?`, string(role)).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts a new client with a freshly minted API secret and login
// token, returning the one-time plaintext token alongside the row.
func (r *ClientRepo) Create(ctx context.Context, p NewClientParams) (ClientWithToken, error) {
	id := ids.New()
	secret, err := randomSecret()
	if err != nil {
		return ClientWithToken{}, fmt.Errorf("generate secret: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return ClientWithToken{}, fmt.Errorf("hash secret: %w", err)
	}

	var loginToken string
	for attempt := 0; attempt < 5; attempt++ {
		loginToken, err = randomLoginToken()
		if err != nil {
			return ClientWithToken{}, fmt.Errorf("generate login token: %w", err)
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO clients (id, name, role, api_secret_hash, login_token) VALUES (?,?,?,?,?)`,
			id, p.Name, string(p.Role), string(hash), loginToken,
		)
		if err == nil {
			break
		}
		if !isUniqueViolation(err) {
			return ClientWithToken{}, fmt.Errorf("insert client: %w", err)
		}
		// A collision on login_token is retried; a collision on name/id
		// is a real conflict and surfaces immediately.
		if !loginTokenCollision(ctx, r.db, loginToken) {
			return ClientWithToken{}, apperr.Conflict("a client with this name already exists")
		}
	}
	if err != nil {
		return ClientWithToken{}, fmt.Errorf("insert client after retries: %w", err)
	}

	r.bus.Dispatch(bus.Added{Entity: bus.EntityClient, ID: id})

	return ClientWithToken{
		Client: Client{
			ID: id, Name: p.Name, Role: p.Role,
			APISecretHash: string(hash), LoginToken: loginToken,
		},
		PlainToken: id + "-" + secret,
	}, nil
}

// FindByID looks up a client by external ID.
func (r *ClientRepo) FindByID(ctx context.Context, id string) (Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, role, api_secret_hash, login_token FROM clients WHERE id = ?`, id)
	var c Client
	var role string
	if err := row.Scan(&c.ID, &c.Name, &role, &c.APISecretHash, &c.LoginToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Client{}, apperr.NotFound("client not found")
		}
		return Client{}, err
	}
	c.Role = Role(role)
	return c, nil
}

// FindByLoginToken looks up a client by its login token, used by
// the login-token-exchange endpoint.
func (r *ClientRepo) FindByLoginToken(ctx context.Context, token string) (Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, role, api_secret_hash, login_token FROM clients WHERE login_token = ?`, token)
	var c Client
	var role string
	if err := row.Scan(&c.ID, &c.Name, &role, &c.APISecretHash, &c.LoginToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Client{}, apperr.NotFound("login token not recognized")
		}
		return Client{}, err
	}
	c.Role = Role(role)
	return c, nil
}

// Update changes a client's name or role; used by the admin
// PUT /clients/{id} endpoint. The API secret is only ever changed via
// RotateSecret; neither method changes the login token.
func (r *ClientRepo) Update(ctx context.Context, id string, p NewClientParams) (Client, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET name = ?, role = ? WHERE id = ?`, p.Name, string(p.Role), id)
	if err != nil {
		if isUniqueViolation(err) {
			return Client{}, apperr.Conflict("a client with this name already exists")
		}
		return Client{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Client{}, apperr.NotFound("client not found")
	}
	r.bus.Dispatch(bus.Updated{Entity: bus.EntityClient, ID: id})
	return r.FindByID(ctx, id)
}

// VerifySecret checks a plaintext secret against the client's stored hash.
func (c Client) VerifySecret(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.APISecretHash), []byte(secret)) == nil
}

// RotateSecret regenerates a client's API secret, invalidating the old one.
func (r *ClientRepo) RotateSecret(ctx context.Context, id string) (ClientWithToken, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil {
		return ClientWithToken{}, err
	}
	secret, err := randomSecret()
	if err != nil {
		return ClientWithToken{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return ClientWithToken{}, err
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE clients SET api_secret_hash = ? WHERE id = ?`, string(hash), id); err != nil {
		return ClientWithToken{}, err
	}
	r.bus.Dispatch(bus.Updated{Entity: bus.EntityClient, ID: id})
	c.APISecretHash = string(hash)
	return ClientWithToken{Client: c, PlainToken: id + "-" + secret}, nil
}

// Delete removes a client by ID.
func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("client not found")
	}
	r.bus.Dispatch(bus.Deleted{Entity: bus.EntityClient, ID: id})
	return nil
}

// List returns a cursor-paginated client listing ordered by id.
func (r *ClientRepo) List(ctx context.Context, cur Cursor) ([]Client, error) {
	query, args := keysetQuery("clients", "id, name, role, api_secret_hash, login_token", cur)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		var role string
		if err := rows.Scan(&c.ID, &c.Name, &role, &c.APISecretHash, &c.LoginToken); err != nil {
			return nil, err
		}
		c.Role = Role(role)
		out = append(out, c)
	}
	if cur.Direction == Previous {
		reverse(out)
	}
	return out, rows.Err()
}

func randomSecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

func randomLoginToken() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

func loginTokenCollision(ctx context.Context, db *sql.DB, token string) bool {
	var n int
	_ = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients WHERE login_token = ?`, token).Scan(&n)
	return n > 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "constraint failed")
}
