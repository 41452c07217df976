package webnet

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ogahub/ogalib"
	"github.com/ogahub/ogalib/job"
)

// EncodeURL escapes s for use inside a URL query.
func EncodeURL(s string) string {
	return url.QueryEscape(s)
}

func errorResult(msg string) *ogalib.Value {
	return ogalib.New(ogalib.Obj{{Key: "error", Value: msg}})
}

// Login authenticates against the service using the provider registered for
// network. The provider runs on a pool worker, then the credentials are
// exchanged at <BaseAPI>/Login/v1/ for a user id and token.
//
// callback runs on the goroutine calling Pool.Update with either
// {"success": true} or {"error": "<message>"}. Rejections that need no work,
// such as an unknown network, are reported synchronously. Only one login
// may run at a time.
func (c *Client) Login(network string, callback func(result *ogalib.Value)) {
	report := func(v *ogalib.Value) {
		if callback != nil {
			callback(v)
		}
	}

	provider, ok := c.registry.Lookup(network)
	if !ok {
		report(errorResult(fmt.Sprintf("Unknown network %s.", network)))
		return
	}
	if !c.session.begin() {
		report(errorResult("Login already in progress."))
		return
	}

	_, err := c.pool.Submit(func(j *job.Job) {
		creds, err := provider.Authorize(context.Background())
		if err != nil {
			c.logger.Warn("authorization failed", slog.String("network", network), slog.Any("error", err))
		}
		j.Data.Key("success").Assign(err == nil)
		j.Data.Key("accountId").Assign(creds.AccountID)
		j.Data.Key("authorizationCode").Assign(creds.AuthorizationCode)
		j.Data.Key("issuerId").Assign(creds.IssuerID)
	}, func(j *job.Job) {
		if !j.Data.Lookup("success").Bool() {
			c.session.finish()
			report(errorResult(fmt.Sprintf("Unable to request %s authorization.", network)))
			return
		}

		params := ogalib.New(ogalib.Obj{{Key: "usesAPIKey", Value: true}})
		if c.cfg.IgnoreSSLErrors {
			params.Key("ignoreSSLErrors").Assign(true)
		}
		err := c.SendURLAsync(c.loginURL(network, j.Data), params, func(response *ogalib.Value) {
			c.session.finish()
			report(c.finishLogin(response))
		})
		if err != nil {
			c.session.finish()
			report(errorResult(err.Error()))
		}
	})
	if err != nil {
		c.session.finish()
		report(errorResult(err.Error()))
	}
}

func (c *Client) loginURL(network string, data *ogalib.Value) string {
	query := fmt.Sprintf("?network=%s&%sAccountId=%s&%sAuthorizationCode=%s&%sAuthorizationCodeIssuerId=%d",
		network,
		network, EncodeURL(data.Lookup("accountId").Str()),
		network, EncodeURL(data.Lookup("authorizationCode").Str()),
		network, integer(data.Lookup("issuerId").Value()))
	if c.cfg.EncodeURLRequests {
		query = EncodeURL(query)
	}
	return c.cfg.BaseAPI + "/Login/v1/" + query
}

// finishLogin interprets the login endpoint's answer and updates the
// session on success.
func (c *Client) finishLogin(response *ogalib.Value) *ogalib.Value {
	if it := response.Lookup("error"); it.Ok() {
		return errorResult(it.Str())
	}
	body := response.Lookup("response")
	if !body.Ok() {
		return errorResult("Could not find response.")
	}

	var login ogalib.Value
	if !login.ParseString(body.Str()) {
		return errorResult(login.Err().Error())
	}
	if it := login.Lookup("error"); it.Ok() {
		return errorResult(it.Str())
	}
	resp := login.Lookup("resp")
	if !resp.Ok() {
		return errorResult("Unknown response.")
	}

	var userID, token uint64
	if resp.Str() == "ok" {
		userID = unsigned(login.Lookup("id").Value())
		token = unsigned(login.Lookup("token").Value())
	}
	// the answer replaces any earlier session, valid or not
	c.session.set(userID, token)
	if userID == 0 || token == 0 {
		return errorResult("Invalid user.")
	}

	c.logger.Info("logged in", slog.Uint64("user", userID))
	return ogalib.New(ogalib.Obj{{Key: "success", Value: true}})
}

// Logout forgets the session credentials.
func (c *Client) Logout() {
	c.session.Reset()
}

// unsigned reads any non-negative integer number kind, or returns zero.
func unsigned(v *ogalib.Value) uint64 {
	switch v.Kind() {
	case ogalib.KindInt:
		if v.Int() > 0 {
			return uint64(v.Int())
		}
	case ogalib.KindUint:
		return uint64(v.Uint())
	case ogalib.KindInt64:
		if v.Int64() > 0 {
			return uint64(v.Int64())
		}
	case ogalib.KindUint64:
		return v.Uint64()
	}
	return 0
}

// integer reads any number kind that fits in an int64, or returns zero.
func integer(v *ogalib.Value) int64 {
	switch v.Kind() {
	case ogalib.KindInt:
		return int64(v.Int())
	case ogalib.KindUint:
		return int64(v.Uint())
	case ogalib.KindInt64:
		return v.Int64()
	}
	return 0
}
