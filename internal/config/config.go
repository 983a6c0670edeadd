package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	LogLevel  string
	JWTSecret string

	// Central bank key-rate integration (suggested loan-type rates)
	CentralBankURL string
	RateMargin     decimal.Decimal // Added on top of the key rate, percent

	// Business rules
	MaxLoanAmount           decimal.Decimal // Global ceiling per application
	MinCreditScore          int
	ApplicationCooldownDays int
	PenaltyDailyRatePct     decimal.Decimal // Percent of EMI total per overdue day

	// SMTP notifications
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	maxAmount, err := getEnvDecimal("MAX_LOAN_AMOUNT", "5000000")
	if err != nil {
		return nil, err
	}
	penaltyRate, err := getEnvDecimal("PENALTY_DAILY_RATE_PCT", "0.10")
	if err != nil {
		return nil, err
	}
	rateMargin, err := getEnvDecimal("RATE_MARGIN_PCT", "5.00")
	if err != nil {
		return nil, err
	}
	minScore, err := getEnvInt("MIN_CREDIT_SCORE", 650)
	if err != nil {
		return nil, err
	}
	cooldown, err := getEnvInt("APPLICATION_COOLDOWN_DAYS", 15)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		DBConn:    getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=loan sslmode=disable"),
		LogLevel:  getEnv("LOG_LEVEL", "INFO"),
		JWTSecret: getEnv("JWT_SECRET", "secret"),

		CentralBankURL: getEnv("CENTRAL_BANK_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		RateMargin:     rateMargin,

		MaxLoanAmount:           maxAmount,
		MinCreditScore:          minScore,
		ApplicationCooldownDays: cooldown,
		PenaltyDailyRatePct:     penaltyRate,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "no-reply@loanbank.local"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.MaxLoanAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("MAX_LOAN_AMOUNT must be positive")
	}
	if cfg.ApplicationCooldownDays < 0 {
		return nil, fmt.Errorf("APPLICATION_COOLDOWN_DAYS must not be negative")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDecimal(key, defaultVal string) (decimal.Decimal, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultVal
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a decimal number: %w", key, err)
	}
	return d, nil
}
