package identity

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"

	dErrors "kafkaportal/pkg/domain-errors"
)

type LDAPConfig struct {
	URL string
	// BaseDN is searched for the user entry after a successful bind.
	BaseDN string
	// UserDNTemplate has a single %s for the escaped username.
	UserDNTemplate string
	// AdminGroup is the group DN whose members are portal admins.
	AdminGroup  string
	EmailDomain string
	Timeout     time.Duration
	TLS         *tls.Config
}

// LDAPDirectory binds as the user to verify the password, then reads mail and
// memberOf from the user entry.
type LDAPDirectory struct {
	cfg  LDAPConfig
	dial func(url string, opts ...ldap.DialOpt) (ldapConn, error)
}

// ldapConn is the subset of *ldap.Conn used for login.
type ldapConn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	close()
}

type dialedConn struct{ *ldap.Conn }

func (c dialedConn) close() { c.Conn.Close() }

func NewLDAPDirectory(cfg LDAPConfig) *LDAPDirectory {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &LDAPDirectory{
		cfg: cfg,
		dial: func(url string, opts ...ldap.DialOpt) (ldapConn, error) {
			conn, err := ldap.DialURL(url, opts...)
			if err != nil {
				return nil, err
			}
			return dialedConn{conn}, nil
		},
	}
}

func (d *LDAPDirectory) Authenticate(_ context.Context, username, password string) (*Identity, error) {
	username = strings.TrimSpace(username)
	// An empty password would be an unauthenticated bind that most servers accept.
	if username == "" || password == "" {
		return nil, errInvalidCredentials
	}

	opts := []ldap.DialOpt{ldap.DialWithDialer(&net.Dialer{Timeout: d.cfg.Timeout})}
	if d.cfg.TLS != nil {
		opts = append(opts, ldap.DialWithTLSConfig(d.cfg.TLS))
	}
	conn, err := d.dial(d.cfg.URL, opts...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "directory unavailable")
	}
	defer conn.close()

	userDN := fmt.Sprintf(d.cfg.UserDNTemplate, ldap.EscapeDN(username))
	if err := conn.Bind(userDN, password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return nil, errInvalidCredentials
		}
		return nil, mapLDAPError(err)
	}

	ident := &Identity{Username: username, Email: username + "@" + d.cfg.EmailDomain}
	search := ldap.NewSearchRequest(
		d.cfg.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 1, int(d.cfg.Timeout.Seconds()), false,
		fmt.Sprintf("(|(uid=%s)(sAMAccountName=%s))", ldap.EscapeFilter(username), ldap.EscapeFilter(username)),
		[]string{"mail", "memberOf"},
		nil,
	)
	res, err := conn.Search(search)
	if err != nil {
		return nil, mapLDAPError(err)
	}
	if len(res.Entries) == 0 {
		return ident, nil
	}
	entry := res.Entries[0]
	if mail := entry.GetAttributeValue("mail"); mail != "" {
		ident.Email = mail
	}
	for _, group := range entry.GetAttributeValues("memberOf") {
		if strings.EqualFold(group, d.cfg.AdminGroup) {
			ident.IsAdmin = true
			break
		}
	}
	return ident, nil
}

func mapLDAPError(err error) error {
	var lerr *ldap.Error
	if errors.As(err, &lerr) && lerr.ResultCode != ldap.ErrorNetwork {
		return dErrors.Wrap(err, dErrors.CodeInternal, "directory query failed")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "directory unavailable")
}
