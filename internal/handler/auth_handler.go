/*
Package handler provides HTTP handlers for identity token issuance.

Token minting is the auth collaborator's job; the relay core only ever sees
the extracted user id.
*/
package handler

import (
	"net/http"

	"wavechat/internal/pkg/auth/jwt"
	"wavechat/internal/pkg/errs"
	"wavechat/internal/pkg/randx"
	"wavechat/internal/pkg/req"
	"wavechat/internal/pkg/resp"
)

// IssueTokenInput is the JSON input for token issuance. UserID is optional:
// when absent a fresh guest identity is generated.
type IssueTokenInput struct {
	UserID string `json:"user_id,omitempty"`
}

// HandleIssueToken mints an identity token. Callers that present their own
// user id get it embedded verbatim; anonymous callers receive a generated
// guest id.
func HandleIssueToken(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input IssueTokenInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		userID := input.UserID
		userType := "registered"

		if userID == "" {
			generated, err := randx.GuestID()
			if err != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
			userID = generated
			userType = "guest"
		}

		payload := &jwt.Payload{
			UserID:   userID,
			UserType: userType,
		}

		tokenString, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.IdentityExpiration)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token":   tokenString,
			"user_id": userID,
		})
	}
}
