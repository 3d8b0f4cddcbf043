package backend

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/lwestrich/papershelf/core"
)

var loginTmpl = tmpl(`<h1>Login</h1>
	<form method="post" style="max-width: 20rem;">
		<p>
			<label>E-Mail</label><br>
			<input type="text" name="email" value="{{ .Email }}" required autofocus>
		</p>
		<p>
			<label>Password</label><br>
			<input type="password" name="password" required>
		</p>
		<p>
			<button type="submit" name="login">Login</button>
		</p>
	</form>`)

type loginData struct {
	*context
	Email string
}

func login(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if ctx.LoggedIn() {
		ctx.SeeOther("/dashboard")
		return nil
	}

	var email string

	if req.Method == http.MethodPost {

		email = req.PostFormValue("email")
		password := req.PostFormValue("password")

		user, err := ctx.db.LoginAdmin(email, password)
		switch {
		case err == nil:
			token, err := ctx.db.Sessions.Issue(strconv.Itoa(user.ID), user.Role)
			if err != nil {
				return err
			}
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   int(sessionMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   ctx.cookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
			ctx.SeeOther("/dashboard")
			return nil
		case errors.Is(err, core.ErrAuth):
			// one generic message, no matter which factor was wrong
			ctx.Error = "Invalid credentials."
			w.WriteHeader(http.StatusUnauthorized)
			ctx.statusWritten = true
			// keep POST data for the email field
		default:
			return err // store unreachable etc.
		}
	}

	return loginTmpl.Execute(w, &loginData{
		context: ctx,
		Email:   email,
	})
}
