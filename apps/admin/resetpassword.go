package main

import (
	"context"
	"fmt"

	"github.com/almajirisurvey/backend/core"
)

func (cli *commandLine) resetPassword(ctx context.Context, interviewerID, pwd string) error {
	interviewerID = core.CleanString(interviewerID)

	usr, err := cli.usrRepo.GetUserByInterviewerID(ctx, interviewerID)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	if err = cli.usrRepo.UpdatePassword(ctx, usr.ID, usr.PasswordHash); err != nil {
		return err
	}
	fmt.Printf("password reset for %s\n", usr.InterviewerID)
	return nil
}
