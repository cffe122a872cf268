package service

import (
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/marketbots/nsemetricsapi/internal/config"
	"github.com/marketbots/nsemetricsapi/internal/customerrors"
	"github.com/marketbots/nsemetricsapi/internal/models"
	"github.com/marketbots/nsemetricsapi/internal/repository"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	smartAPIBaseURL = "https://apiconnect.angelone.in"
	loginPath       = "/rest/auth/angelbroking/user/v1/loginByPassword"

	// sessionReuseWindow bounds how long a stored session is reused
	// before a fresh login
	sessionReuseWindow = 8 * time.Hour

	loginTimeLayout = "2006-01-02 15:04:05"
)

// SessionService manages broker API sessions
type SessionService struct {
	repo   *repository.SessionRepository
	client *resty.Client
	cfg    *config.Config
}

// NewSessionService creates a new service for broker sessions
func NewSessionService(db *gorm.DB, cfg *config.Config) *SessionService {
	return &SessionService{
		repo:   repository.NewSessionRepository(db),
		client: resty.New().SetBaseURL(smartAPIBaseURL).SetTimeout(10 * time.Second),
		cfg:    cfg,
	}
}

type loginRequest struct {
	ClientCode string `json:"clientcode"`
	Password   string `json:"password"`
	Totp       string `json:"totp"`
}

type loginResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		JwtToken     string `json:"jwtToken"`
		RefreshToken string `json:"refreshToken"`
		FeedToken    string `json:"feedToken"`
	} `json:"data"`
}

// GenerateSession returns a broker session, reusing a fresh stored one
// when the password still matches, otherwise logging in with a TOTP.
func (s *SessionService) GenerateSession() (*models.SessionModel, error) {
	existingSession, err := s.repo.GetSessionByClientCode(s.cfg.SmartAPIClientCode)
	if err == nil && s.isSessionReusable(existingSession) {
		return existingSession, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, customerrors.Storagef("failed to read session: %v", err)
	}

	totpValue, err := s.GenerateTOTP()
	if err != nil {
		return nil, err
	}

	var loginResp loginResponse
	resp, err := s.brokerRequest().
		SetBody(loginRequest{
			ClientCode: s.cfg.SmartAPIClientCode,
			Password:   s.cfg.SmartAPIPassword,
			Totp:       totpValue,
		}).
		SetResult(&loginResp).
		Post(loginPath)
	if err != nil {
		return nil, customerrors.Fetchf("login request failed: %v", err)
	}
	if !resp.IsSuccess() || !loginResp.Status {
		return nil, customerrors.Authf("login failed: %s", loginResp.Message)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(s.cfg.SmartAPIPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, customerrors.Authf("failed to hash password: %v", err)
	}

	newSession := models.SessionModel{
		ClientCode:     s.cfg.SmartAPIClientCode,
		HashedPassword: string(hashedPassword),
		JwtToken:       loginResp.Data.JwtToken,
		RefreshToken:   loginResp.Data.RefreshToken,
		FeedToken:      loginResp.Data.FeedToken,
		LoginTime:      time.Now().Format(loginTimeLayout),
	}

	if err := s.repo.UpsertSession(&newSession); err != nil {
		return nil, customerrors.Storagef("failed to upsert session: %v", err)
	}

	return &newSession, nil
}

// isSessionReusable checks the stored password hash and the session age
func (s *SessionService) isSessionReusable(session *models.SessionModel) bool {
	if session.JwtToken == "" {
		return false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(session.HashedPassword), []byte(s.cfg.SmartAPIPassword)); err != nil {
		return false
	}
	loginTime, err := time.Parse(loginTimeLayout, session.LoginTime)
	if err != nil {
		return false
	}
	return time.Since(loginTime) < sessionReuseWindow
}

// GenerateTOTP generates the time-based one-time code for login
func (s *SessionService) GenerateTOTP() (string, error) {
	totpValue, err := totp.GenerateCode(s.cfg.SmartAPITotpSecret, time.Now())
	if err != nil {
		return "", customerrors.Authf("failed to generate totp: %v", err)
	}
	return totpValue, nil
}

// DeleteSession removes the stored session for the configured client
func (s *SessionService) DeleteSession() (int64, error) {
	return s.repo.DeleteSession(s.cfg.SmartAPIClientCode)
}

// brokerRequest applies the broker identification headers
func (s *SessionService) brokerRequest() *resty.Request {
	return s.client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-UserType", "USER").
		SetHeader("X-SourceID", "WEB").
		SetHeader("X-ClientLocalIP", s.cfg.ClientLocalIP).
		SetHeader("X-ClientPublicIP", s.cfg.ClientPublicIP).
		SetHeader("X-MACAddress", s.cfg.ClientMacAddress).
		SetHeader("X-PrivateKey", s.cfg.SmartAPIKey)
}
