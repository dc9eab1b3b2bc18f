package authorization

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Authorize checks that the user holds a role in the company that grants
	// action on object.
	Authorize(ctx context.Context, userID, companyID snowflake.ID, object, action string) error
}
