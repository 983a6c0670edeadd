package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akotov/loan-service/internal/apperr"
	"github.com/akotov/loan-service/internal/config"
	"github.com/akotov/loan-service/internal/models"
	"github.com/akotov/loan-service/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Initial score assigned at registration until a bureau feed updates it.
const defaultCreditScore = 680

// Notifier sends customer-facing emails. Implementations must be safe for
// concurrent use; a nil Notifier disables notifications.
type Notifier interface {
	SendApplicationDecision(to, name string, app *models.LoanApplication) error
	SendPaymentReceipt(to, name string, receipt *models.PaymentReceipt) error
	SendPaymentReminder(to, name, loanNumber string, due models.DueEmi) error
}

// Service handles business logic
type Service struct {
	store  repository.Store
	log    *logrus.Logger
	config *config.Config
	mail   Notifier

	// One mutex per loan number; MakePayment holds it across its whole
	// read-compute-write sequence.
	loanLocks sync.Map

	now func() time.Time // Overridable in tests
}

// NewService initializes a new service
func NewService(store repository.Store, log *logrus.Logger, cfg *config.Config, mail Notifier) *Service {
	return &Service{store: store, log: log, config: cfg, mail: mail, now: time.Now}
}

// Register creates a new customer with a hashed password
func (s *Service) Register(name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, apperr.Validation("name and email are required")
	}
	if len(password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to hash password")
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleCustomer,
		CreditScore:  defaultCreditScore,
		Active:       true,
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, apperr.Unexpected(err, "failed to register user")
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		return "", apperr.Authentication("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperr.Authentication("invalid credentials")
	}

	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": string(user.Role),
		"exp":  jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", apperr.Unexpected(err, "failed to generate token")
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// canReview is the single authorization policy for application review:
// the assigned manager, or any admin.
func canReview(reviewerID int64, role models.Role, app *models.LoanApplication) bool {
	if role == models.RoleAdmin {
		return true
	}
	return role == models.RoleManager && app.AssignedTo == reviewerID
}

// isStaff reports whether the role may see entities it does not own.
func isStaff(role models.Role) bool {
	return role == models.RoleManager || role == models.RoleAdmin
}

func (s *Service) notifyDecision(app *models.LoanApplication) {
	if s.mail == nil {
		return
	}
	customer, err := s.store.FindUserByID(app.CustomerID)
	if err != nil {
		s.log.Warnf("Decision notification skipped for %s: %v", app.ApplicationNumber, err)
		return
	}
	if err := s.mail.SendApplicationDecision(customer.Email, customer.Name, app); err != nil {
		s.log.Warnf("Failed to send decision email for %s: %v", app.ApplicationNumber, err)
	}
}

func (s *Service) notifyReceipt(customerID int64, receipt *models.PaymentReceipt) {
	if s.mail == nil {
		return
	}
	customer, err := s.store.FindUserByID(customerID)
	if err != nil {
		s.log.Warnf("Receipt notification skipped for %s: %v", receipt.LoanNumber, err)
		return
	}
	if err := s.mail.SendPaymentReceipt(customer.Email, customer.Name, receipt); err != nil {
		s.log.Warnf("Failed to send receipt email for %s: %v", receipt.LoanNumber, err)
	}
}
