package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func logout(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	// the token itself stays valid until it expires, the server only
	// discards the cookie
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ctx.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	ctx.SeeOther("/login")
	return nil
}
