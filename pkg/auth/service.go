package auth

import (
	"time"

	"github.com/bibliodesk/bibliodesk/pkg/errcodes"
	"github.com/bibliodesk/bibliodesk/pkg/models"
	"github.com/bibliodesk/bibliodesk/pkg/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// TokenExpiry is how long JWT tokens are valid.
const TokenExpiry = 7 * 24 * time.Hour // 7 days

// JWTClaims represents the claims in a JWT token.
type JWTClaims struct {
	AdminID  int    `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service handles admin authentication.
type Service struct {
	store     *store.Store
	jwtSecret []byte
}

// NewService creates a new auth service.
func NewService(st *store.Store, jwtSecret string) *Service {
	return &Service{
		store:     st,
		jwtSecret: []byte(jwtSecret),
	}
}

// Authenticate validates credentials and returns the matching admin. The
// credential file stores the password as entered, so this is a straight
// comparison.
func (s *Service) Authenticate(username, password string) (*models.AdminCredential, error) {
	var admin *models.AdminCredential
	err := s.store.View(func(d *store.Data) error {
		for _, a := range d.Admins {
			if a.Username == username {
				admin = a
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if admin == nil || admin.Password != password {
		return nil, errcodes.Unauthorized("Invalid credentials")
	}

	return admin, nil
}

// GenerateToken creates a new JWT token for the admin.
func (s *Service) GenerateToken(admin *models.AdminCredential) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		AdminID:  admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.WithStack(err)
	}

	return signedToken, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
