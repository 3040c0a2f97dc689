package usecase

import (
	"fmt"

	accountdomain "mailsweep/internal/account/domain"
	"mailsweep/internal/account/repository"
	emaildomain "mailsweep/internal/email/domain"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// accountUsecase implements AccountUsecase interface
type accountUsecase struct {
	userRepo    repository.UserRepository
	accountRepo repository.MailboxAccountRepository
	log         *zap.Logger
}

// NewAccountUsecase creates a new instance of accountUsecase
func NewAccountUsecase(userRepo repository.UserRepository, accountRepo repository.MailboxAccountRepository, log *zap.Logger) AccountUsecase {
	return &accountUsecase{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		log:         log.Named("account"),
	}
}

func (u *accountUsecase) CreateUser(email string) (*accountdomain.User, error) {
	user := &accountdomain.User{Email: email}
	if err := u.userRepo.Create(user); err != nil {
		return nil, err
	}
	u.log.Info("user created", zap.String("user_id", user.ID))
	return user, nil
}

func (u *accountUsecase) GetUserByEmail(email string) (*accountdomain.User, error) {
	user, err := u.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, accountdomain.ErrUserNotFound
	}
	return user, nil
}

func (u *accountUsecase) LinkAccount(input LinkAccountInput) (*accountdomain.MailboxAccount, error) {
	user, err := u.userRepo.FindByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, accountdomain.ErrUserNotFound
	}
	if err := accountdomain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	googleID := input.GoogleID
	if googleID == "" {
		googleID = input.Email
	}

	account := &accountdomain.MailboxAccount{
		UserID:       user.ID,
		Email:        input.Email,
		GoogleID:     googleID,
		Provider:     input.Provider,
		IMAPHost:     input.IMAPHost,
		IMAPPort:     input.IMAPPort,
		IsPrimary:    input.IsPrimary,
		AccessToken:  input.AccessToken,
		RefreshToken: input.RefreshToken,
		TokenExpiry:  input.TokenExpiry,
	}
	if err := u.accountRepo.Create(account); err != nil {
		return nil, fmt.Errorf("link %s: %w", input.Email, err)
	}
	u.log.Info("mailbox linked",
		zap.String("user_id", user.ID),
		zap.String("account", account.Email),
		zap.Bool("primary", account.IsPrimary))
	return account, nil
}

func (u *accountUsecase) ListAccounts(userID string) ([]*accountdomain.MailboxAccount, error) {
	return u.accountRepo.FindByUserID(userID)
}

func (u *accountUsecase) SetPrimary(userID, accountID string) error {
	return u.accountRepo.SetPrimary(userID, accountID)
}

func (u *accountUsecase) DeleteAccount(userID, accountID string) error {
	account, err := u.accountRepo.FindByID(accountID)
	if err != nil {
		return err
	}
	if account == nil || account.UserID != userID {
		return accountdomain.ErrAccountNotFound
	}
	if err := u.accountRepo.Delete(accountID); err != nil {
		return err
	}
	u.log.Info("mailbox removed", zap.String("account", account.Email))
	return nil
}

func (u *accountUsecase) TokenUpdater(accountID string) emaildomain.TokenUpdateFunc {
	return func(token *oauth2.Token) error {
		if err := u.accountRepo.UpdateTokens(accountID, token); err != nil {
			u.log.Error("failed to persist refreshed token", zap.String("account_id", accountID), zap.Error(err))
			return err
		}
		u.log.Info("refreshed token persisted", zap.String("account_id", accountID))
		return nil
	}
}
