package internal

import (
	"github.com/Abhishek5chawan/WhisperLink/internal/service"
	"github.com/Abhishek5chawan/WhisperLink/internal/store"
	"github.com/Abhishek5chawan/WhisperLink/pkg/security"
)

type Deps struct {
	Store     store.Store
	Argon     *security.ArgonHash
	Sessions  *security.Sessions
	Accounts  *service.AccountService
	Inbox     *service.InboxService
	Suggester service.Suggester
	Cleanup   *service.AccountCleanup

	// Cookie settings for the session cookie
	SecureCookies bool
}
