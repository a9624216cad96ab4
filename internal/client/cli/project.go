package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iudanet/boardsync/pkg/api"
)

func (c *Cli) runCreateProject(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: boardsync create-project <name>")
	}

	body, err := marshalBody(api.CreateProjectRequest{Name: args[0]})
	if err != nil {
		return err
	}

	return c.mutate(ctx, api.MutationRequest{
		Method: http.MethodPost,
		Path:   "/api/v1/projects",
		Body:   body,
	})
}

func (c *Cli) runAddMember(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: boardsync add-member <project_id> <user_id>")
	}
	projectID, userID := args[0], args[1]

	body, err := marshalBody(api.AddMemberRequest{UserID: userID})
	if err != nil {
		return err
	}

	return c.mutate(ctx, api.MutationRequest{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/v1/projects/%s/members", projectID),
		Body:   body,
	})
}
