package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) ensureIndexes(ctx context.Context) error {
	if err := cli.db.EnsureIndexes(ctx); err != nil {
		return err
	}
	fmt.Println("indexes ensured")
	return nil
}
