package usecase

import (
	"errors"
	"testing"
	"time"

	accountdomain "mailsweep/internal/account/domain"
	"mailsweep/internal/account/repository"
	"mailsweep/internal/testutil"

	"github.com/nalgeon/be"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func newUsecase(t *testing.T) (AccountUsecase, repository.MailboxAccountRepository) {
	db := testutil.NewTestDB(t)
	accounts := repository.NewMailboxAccountRepository(db)
	return NewAccountUsecase(repository.NewUserRepository(db), accounts, zap.NewNop()), accounts
}

func TestLinkAccountRequiresUser(t *testing.T) {
	uc, _ := newUsecase(t)
	_, err := uc.LinkAccount(LinkAccountInput{UserID: "missing", Email: "x@example.com"})
	be.True(t, errors.Is(err, accountdomain.ErrUserNotFound))
}

func TestLinkAccountSecondPrimaryRejected(t *testing.T) {
	uc, _ := newUsecase(t)
	user, err := uc.CreateUser("owner@example.com")
	be.Err(t, err, nil)

	_, err = uc.LinkAccount(LinkAccountInput{UserID: user.ID, Email: "one@example.com", IsPrimary: true})
	be.Err(t, err, nil)

	_, err = uc.LinkAccount(LinkAccountInput{UserID: user.ID, Email: "two@example.com", IsPrimary: true})
	be.True(t, errors.Is(err, accountdomain.ErrPrimaryAccountExists))

	accounts, err := uc.ListAccounts(user.ID)
	be.Err(t, err, nil)
	be.Equal(t, len(accounts), 1)
	be.Equal(t, accounts[0].Provider, accountdomain.ProviderGmail)
}

func TestDeleteAccountChecksOwner(t *testing.T) {
	uc, _ := newUsecase(t)
	owner, _ := uc.CreateUser("owner@example.com")
	other, _ := uc.CreateUser("other@example.com")
	acc, err := uc.LinkAccount(LinkAccountInput{UserID: owner.ID, Email: "box@example.com"})
	be.Err(t, err, nil)

	err = uc.DeleteAccount(other.ID, acc.ID)
	be.True(t, errors.Is(err, accountdomain.ErrAccountNotFound))

	be.Err(t, uc.DeleteAccount(owner.ID, acc.ID), nil)
}

func TestTokenUpdaterPersists(t *testing.T) {
	uc, accounts := newUsecase(t)
	owner, _ := uc.CreateUser("owner@example.com")
	acc, err := uc.LinkAccount(LinkAccountInput{
		UserID:       owner.ID,
		Email:        "box@example.com",
		AccessToken:  "stale",
		RefreshToken: "rt",
	})
	be.Err(t, err, nil)

	update := uc.TokenUpdater(acc.ID)
	be.Err(t, update(&oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}), nil)

	got, err := accounts.FindByID(acc.ID)
	be.Err(t, err, nil)
	be.Equal(t, got.AccessToken, "fresh")
	be.Equal(t, got.RefreshToken, "rt")
}
