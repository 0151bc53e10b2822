package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/akinalp/sohbet/config"
	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// AuthService, OAuth handoff ve oturum yönetimi.
//
// Kimlik doğrulamanın kendisi identity provider'dadır — biz sadece
// authorization code'u provider'da oturuma çevirir, kullanıcıyı upsert
// eder ve kendi oturum token çiftimizi üretiriz:
//   - access token: kısa ömürlü JWT (cookie'de taşınır, DB'ye yazılmaz)
//   - refresh token: uzun ömürlü opaque değer (sessions tablosunda)
type AuthService interface {
	// AuthURL, provider'ın authorize sayfasının URL'ini döner.
	// state, callback'e olduğu gibi geri döner — next path'i taşır.
	AuthURL(state string) string
	// ExchangeCode, authorization code'u provider'da doğrulayıp oturum açar.
	// Exchange veya userinfo hatası ErrUnauthorized olarak döner.
	ExchangeCode(ctx context.Context, code string) (*AuthTokens, error)
	// RefreshSession, refresh token'ı doğrular ve token çiftini rotate eder.
	RefreshSession(ctx context.Context, refreshToken string) (*AuthTokens, error)
	// Logout, refresh token'ın oturumunu kapatır. Bilinmeyen token hata değildir.
	Logout(ctx context.Context, refreshToken string) error
	// ValidateAccessToken, JWT access token'ı doğrular ve claims'i döner.
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
	// AccessTokenTTL / RefreshTokenTTL, cookie MaxAge hesabı için.
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

// AuthTokens, başarılı exchange/refresh sonucu.
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

// authService, AuthService interface'inin implementasyonu.
type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	oauth       *oauth2.Config
	userInfoURL string
	jwtSecret   []byte
	accessExp   time.Duration
	refreshExp  time.Duration
}

// NewAuthService, constructor.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	oauthCfg config.OAuthConfig,
	sessionCfg config.SessionConfig,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		oauth: &oauth2.Config{
			ClientID:     oauthCfg.ClientID,
			ClientSecret: oauthCfg.ClientSecret,
			RedirectURL:  oauthCfg.RedirectURL,
			Scopes:       oauthCfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  oauthCfg.AuthURL,
				TokenURL: oauthCfg.TokenURL,
			},
		},
		userInfoURL: oauthCfg.UserInfoURL,
		jwtSecret:   []byte(sessionCfg.Secret),
		accessExp:   time.Duration(sessionCfg.AccessTokenExpiry) * time.Minute,
		refreshExp:  time.Duration(sessionCfg.RefreshTokenExpiry) * 24 * time.Hour,
	}
}

func (s *authService) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// userInfo, provider'ın userinfo endpoint'inden dönen standart claim'ler
// (OpenID Connect isimleri — Google, ve OIDC konuşan her IdP ile uyumlu).
type userInfo struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *authService) ExchangeCode(ctx context.Context, code string) (*AuthTokens, error) {
	// 1. Code → provider token. Başarısızlık detayı log seviyesinde bile
	// ilginç değil: kullanıcı login'e geri yönlendirilir, akışı baştan başlatır.
	providerToken, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange failed", pkg.ErrUnauthorized)
	}

	// 2. Kimlik bilgisi — provider token'ı ile userinfo endpoint'i
	info, err := s.fetchUserInfo(ctx, providerToken)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch user identity", pkg.ErrUnauthorized)
	}
	if info.Subject == "" {
		return nil, fmt.Errorf("%w: provider returned no subject", pkg.ErrUnauthorized)
	}

	// 3. Kullanıcıyı upsert et — tekrar girişte profil alanları tazelenir
	user := &models.User{
		Provider:    "oidc",
		Subject:     info.Subject,
		Email:       optional(info.Email),
		DisplayName: optional(info.Name),
		AvatarURL:   optional(info.Picture),
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}

	// 4. Kendi oturum token çiftimiz
	return s.generateTokens(ctx, user)
}

func (s *authService) RefreshSession(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		if delErr := s.sessionRepo.DeleteByID(ctx, session.ID); delErr != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", delErr)
		}
		return nil, fmt.Errorf("%w: refresh token expired", pkg.ErrUnauthorized)
	}

	// Rotation: eski oturum silinir, yeni token çifti üretilir.
	// Çalınan refresh token ikinci kullanımda ErrNotFound'a düşer.
	if err := s.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("failed to delete old session: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil
		}
		return err
	}

	return s.sessionRepo.DeleteByID(ctx, session.ID)
}

func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}

	return claims, nil
}

func (s *authService) AccessTokenTTL() time.Duration  { return s.accessExp }
func (s *authService) RefreshTokenTTL() time.Duration { return s.refreshExp }

// ─── Private Helpers ───

func (s *authService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*userInfo, error) {
	// oauth2.Config.Client, Authorization header'ını otomatik ekler
	resp, err := s.oauth.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: %s", resp.Status)
	}

	var info userInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}

	return &info, nil
}

func (s *authService) generateTokens(ctx context.Context, user *models.User) (*AuthTokens, error) {
	now := time.Now()
	accessClaims := &models.TokenClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "sohbet",
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshBytes := make([]byte, 32)
	if _, err := rand.Read(refreshBytes); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshString := hex.EncodeToString(refreshBytes)

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: refreshString,
		ExpiresAt:    now.Add(s.refreshExp),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthTokens{
		AccessToken:  accessString,
		RefreshToken: refreshString,
		User:         *user,
	}, nil
}

// optional, boş string'i nil pointer'a çevirir — nullable DB kolonları için.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
