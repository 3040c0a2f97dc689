package repository

import (
	"errors"
	"testing"
	"time"

	accountdomain "mailsweep/internal/account/domain"
	emaildomain "mailsweep/internal/email/domain"
	"mailsweep/internal/testutil"

	"github.com/google/uuid"
	"github.com/nalgeon/be"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

func newUser(t *testing.T, repo UserRepository, email string) *accountdomain.User {
	t.Helper()
	u := &accountdomain.User{Email: email}
	be.Err(t, repo.Create(u), nil)
	return u
}

func newAccount(userID, email string, primary bool) *accountdomain.MailboxAccount {
	return &accountdomain.MailboxAccount{
		UserID:    userID,
		Email:     email,
		GoogleID:  "g-" + email,
		IsPrimary: primary,
	}
}

func TestUserCreateValidatesEmail(t *testing.T) {
	repo := NewUserRepository(testutil.NewTestDB(t))

	err := repo.Create(&accountdomain.User{Email: "not_an_email"})
	be.True(t, errors.Is(err, accountdomain.ErrInvalidEmail))

	u := newUser(t, repo, "test@example.com")
	be.True(t, u.ID != "")

	found, err := repo.FindByEmail("test@example.com")
	be.Err(t, err, nil)
	be.Equal(t, found.ID, u.ID)
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	repo := NewUserRepository(testutil.NewTestDB(t))
	newUser(t, repo, "dup@example.com")

	err := repo.Create(&accountdomain.User{Email: "dup@example.com"})
	be.True(t, errors.Is(err, accountdomain.ErrDuplicateUser))
}

func TestUserFindMissingReturnsNil(t *testing.T) {
	repo := NewUserRepository(testutil.NewTestDB(t))
	u, err := repo.FindByID("nope")
	be.Err(t, err, nil)
	be.True(t, u == nil)
}

func TestSinglePrimaryAccountPerUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := NewUserRepository(db)
	repo := NewMailboxAccountRepository(db)

	u := newUser(t, users, "owner@example.com")
	be.Err(t, repo.Create(newAccount(u.ID, "a@example.com", true)), nil)

	err := repo.Create(newAccount(u.ID, "b@example.com", true))
	be.True(t, errors.Is(err, accountdomain.ErrPrimaryAccountExists))

	// a non-primary second account is fine
	be.Err(t, repo.Create(newAccount(u.ID, "c@example.com", false)), nil)

	// another user can have their own primary
	other := newUser(t, users, "other@example.com")
	be.Err(t, repo.Create(newAccount(other.ID, "d@example.com", true)), nil)
}

func TestPrimaryIndexEnforcedByStore(t *testing.T) {
	db := testutil.NewTestDB(t)
	u := newUser(t, NewUserRepository(db), "idx@example.com")

	first := newAccount(u.ID, "p1@example.com", true)
	first.ID = uuid.New().String()
	be.Err(t, db.Create(first).Error, nil)

	second := newAccount(u.ID, "p2@example.com", true)
	second.ID = uuid.New().String()
	err := db.Create(second).Error
	be.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestSetPrimaryMovesFlag(t *testing.T) {
	db := testutil.NewTestDB(t)
	u := newUser(t, NewUserRepository(db), "move@example.com")
	repo := NewMailboxAccountRepository(db)

	a := newAccount(u.ID, "a@example.com", true)
	b := newAccount(u.ID, "b@example.com", false)
	be.Err(t, repo.Create(a), nil)
	be.Err(t, repo.Create(b), nil)

	be.Err(t, repo.SetPrimary(u.ID, b.ID), nil)

	gotA, _ := repo.FindByID(a.ID)
	gotB, _ := repo.FindByID(b.ID)
	be.True(t, !gotA.IsPrimary)
	be.True(t, gotB.IsPrimary)

	err := repo.SetPrimary(u.ID, "missing")
	be.True(t, errors.Is(err, accountdomain.ErrAccountNotFound))
}

func TestDeleteAccountCascadesMessages(t *testing.T) {
	db := testutil.NewTestDB(t)
	u := newUser(t, NewUserRepository(db), "cascade@example.com")
	repo := NewMailboxAccountRepository(db)

	acc := newAccount(u.ID, "box@example.com", false)
	keep := newAccount(u.ID, "keep@example.com", false)
	be.Err(t, repo.Create(acc), nil)
	be.Err(t, repo.Create(keep), nil)

	for i, accountID := range []string{acc.ID, acc.ID, acc.ID, keep.ID} {
		msg := &emaildomain.Message{
			ID:         uuid.New().String(),
			RemoteID:   "r" + string(rune('0'+i)),
			AccountID:  accountID,
			UserID:     u.ID,
			ReceivedAt: time.Now(),
		}
		be.Err(t, db.Create(msg).Error, nil)
	}

	be.Err(t, repo.Delete(acc.ID), nil)

	var remaining int64
	db.Model(&emaildomain.Message{}).Count(&remaining)
	be.Equal(t, remaining, int64(1))

	gone, err := repo.FindByID(acc.ID)
	be.Err(t, err, nil)
	be.True(t, gone == nil)
}

func TestUpdateTokensKeepsRefreshToken(t *testing.T) {
	db := testutil.NewTestDB(t)
	u := newUser(t, NewUserRepository(db), "tok@example.com")
	repo := NewMailboxAccountRepository(db)

	acc := newAccount(u.ID, "tok-box@example.com", false)
	acc.AccessToken = "old"
	acc.RefreshToken = "refresh-1"
	be.Err(t, repo.Create(acc), nil)

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	be.Err(t, repo.UpdateTokens(acc.ID, &oauth2.Token{AccessToken: "new", Expiry: expiry}), nil)

	got, err := repo.FindByID(acc.ID)
	be.Err(t, err, nil)
	be.Equal(t, got.AccessToken, "new")
	be.Equal(t, got.RefreshToken, "refresh-1")
	be.True(t, got.TokenExpiry != nil && got.TokenExpiry.Equal(expiry))
}
