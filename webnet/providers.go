package webnet

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// StaticProvider registers a network that always answers with creds. It is
// meant for development servers and tests.
func StaticProvider(name string, creds Credentials) Registration {
	return NewProvider(name, func(ctx context.Context) (Credentials, error) {
		if err := ctx.Err(); err != nil {
			return Credentials{}, err
		}
		return creds, nil
	})
}

// EnvProvider registers a network whose credentials come from the
// environment at login time:
//
//	OGALIB_<NAME>_ACCOUNT_ID
//	OGALIB_<NAME>_AUTHORIZATION_CODE
//	OGALIB_<NAME>_ISSUER_ID (optional, defaults to 0)
func EnvProvider(name string) Registration {
	prefix := "OGALIB_" + strings.ToUpper(name) + "_"
	return NewProvider(name, func(ctx context.Context) (Credentials, error) {
		var creds Credentials
		var ok bool
		if creds.AccountID, ok = os.LookupEnv(prefix + "ACCOUNT_ID"); !ok {
			return creds, fmt.Errorf("%sACCOUNT_ID not set", prefix)
		}
		if creds.AuthorizationCode, ok = os.LookupEnv(prefix + "AUTHORIZATION_CODE"); !ok {
			return creds, fmt.Errorf("%sAUTHORIZATION_CODE not set", prefix)
		}
		if s, ok := os.LookupEnv(prefix + "ISSUER_ID"); ok {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return creds, fmt.Errorf("%sISSUER_ID: %w", prefix, err)
			}
			creds.IssuerID = id
		}
		return creds, nil
	})
}

// EnvProviders registers EnvProvider for each name.
func EnvProviders(names ...string) Registration {
	regs := make([]Registration, len(names))
	for i, name := range names {
		regs[i] = EnvProvider(name)
	}
	return Group(regs...)
}
