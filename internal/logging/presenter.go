// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"

	apperrors "irms/cli/internal/errors"
)

// kindHints maps an error kind to the next step printed under the message.
var kindHints = map[apperrors.Kind]string{
	apperrors.StorageUnavailable:       "check the storage backend with 'irms config show'",
	apperrors.ConfigInvalid:            "fix the file printed by 'irms config path' or the IRMS_* environment",
	apperrors.GuardMisconfigured:       "login_path must name a route listed by 'irms routes'",
	apperrors.RouteNotFound:            "'irms routes' lists the available pages",
	apperrors.CredentialExchangeFailed: "make sure base_url points at the recipe service",
}

// PresentError formats an error for user display with masking. Errors that
// carry a known kind get a hint line naming the command that helps.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s", context, Mask(err.Error()))
	if hint, ok := kindHints[apperrors.KindOf(err)]; ok {
		msg += "\n  hint: " + hint
	}
	return msg
}
