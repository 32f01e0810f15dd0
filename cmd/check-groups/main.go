package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kartikmohta/submit-system/archive"
	"github.com/kartikmohta/submit-system/groups"

	"github.com/Noah-Huppert/golog"
)

// groupFileName is the file a registration archive must contain, holding
// exactly one line: the group name
const groupFileName = "group.txt"

func main() {
	// {{{1 Context
	ctx := context.Background()

	// {{{1 Logger
	logger := golog.NewStdLogger("check-groups")

	// {{{1 Arguments
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <groups.db> <path_to_submission>\n", os.Args[0])
		os.Exit(1)
	}

	dbArg := os.Args[1]
	submissionPath := os.Args[2]

	if _, err := os.Stat(submissionPath); err != nil {
		logger.Fatalf("error: %s does not exist", submissionPath)
	}

	// The submitting user is named by the archive file, minus its
	// extension.
	username := strings.TrimSuffix(filepath.Base(submissionPath),
		filepath.Ext(submissionPath))

	// {{{1 Read the requested group name
	lines, err := archive.ExtractLines(submissionPath, groupFileName, 1)
	if err != nil {
		logger.Fatalf("error: %s", userMessage(err))
	}

	groupname := strings.TrimSpace(lines[0])
	if groupname == "" {
		logger.Fatalf("error: %s holds an empty group name", groupFileName)
	}

	// {{{1 Update membership
	db, err := groups.NewStore(ctx, dbArg)
	if err != nil {
		logger.Fatalf("error: %s", err.Error())
	}
	defer db.Close(ctx)

	membership, err := db.Load(ctx)
	if err != nil {
		logger.Fatalf("error: %s", err.Error())
	}

	members, err := membership.Assign(username, groupname)
	if err != nil {
		logger.Fatalf("error: %s", err.Error())
	}

	if err := db.Save(ctx, membership); err != nil {
		logger.Fatalf("error: %s", err.Error())
	}

	// {{{1 Report the result
	fmt.Printf("Membership for username: %s\n", username)
	fmt.Printf("Group: %s\n", groupname)
	fmt.Printf("Members: %s\n", strings.Join(members, ", "))
}

// userMessage prefers an error's user presentable form when it has one
func userMessage(err error) string {
	if formatErr, ok := err.(archive.FormatError); ok {
		return formatErr.UserError()
	}

	return err.Error()
}
