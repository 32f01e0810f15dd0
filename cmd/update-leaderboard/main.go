package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kartikmohta/submit-system/archive"
	"github.com/kartikmohta/submit-system/config"
	"github.com/kartikmohta/submit-system/groups"
	"github.com/kartikmohta/submit-system/leaderboard"

	"github.com/Noah-Huppert/golog"
)

// submitFileName is the file a leaderboard archive must contain, one
// prediction line per answer line
const submitFileName = "submit.txt"

// Allowed team sizes
const (
	minTeamSize = 2
	maxTeamSize = 3
)

func main() {
	// {{{1 Context
	ctx := context.Background()

	// {{{1 Logger
	logger := golog.NewStdLogger("update-leaderboard")

	// {{{1 Configuration
	env, err := config.NewEnv()
	if err != nil {
		logger.Fatalf("failed to load environment configuration: %s", err.Error())
	}

	// {{{1 Arguments
	if len(os.Args) != 5 {
		fmt.Fprintf(os.Stderr,
			"usage: %s <groups.db> <leaderboard.db> <answers> <path_to_submission>\n",
			os.Args[0])
		os.Exit(1)
	}

	groupsArg := os.Args[1]
	boardArg := os.Args[2]
	answersPath := os.Args[3]
	submissionPath := os.Args[4]

	for _, path := range []string{answersPath, submissionPath} {
		if _, err := os.Stat(path); err != nil {
			logger.Fatalf("error: %s does not exist", path)
		}
	}

	// {{{1 Resolve the submitting team
	username := strings.TrimSuffix(filepath.Base(submissionPath),
		filepath.Ext(submissionPath))

	groupDb, err := groups.NewStore(ctx, groupsArg)
	if err != nil {
		logger.Fatalf("error: %s", err.Error())
	}
	defer groupDb.Close(ctx)

	membership, err := groupDb.Load(ctx)
	if err != nil {
		logger.Fatalf("error: %s", err.Error())
	}

	groupname, ok := membership.Users[username]
	if !ok {
		logger.Fatalf("error: username %s has no group", username)
	}

	members := membership.Groups[groupname]
	if len(members) < minTeamSize || len(members) > maxTeamSize {
		logger.Fatalf("error: team '%s' has %d members, which is not in the "+
			"allowable range", groupname, len(members))
	}

	// {{{1 Throttle check, evaluated before any mutation
	board, err := leaderboard.NewStore(ctx, boardArg)
	if err != nil {
		logger.Fatalf("error: %s", err.Error())
	}
	defer board.Close(ctx)

	records, err := board.Load(ctx)
	if err != nil {
		logger.Fatalf("error: %s", err.Error())
	}

	now := time.Now()

	var previous *leaderboard.Record
	if record, ok := records[groupname]; ok {
		previous = &record
	}
	if err := leaderboard.CheckThrottle(previous, now, env.MinSubmitInterval); err != nil {
		logger.Fatalf("error: %s", err.Error())
	}

	// {{{1 Score the submission
	answers, err := readLines(answersPath)
	if err != nil {
		logger.Fatalf("error: %s", err.Error())
	}

	submitted, err := archive.ExtractLines(submissionPath, submitFileName, len(answers))
	if err != nil {
		logger.Fatalf("error: %s", userMessage(err))
	}

	accuracy, rmse, err := leaderboard.Score(submitted, answers)
	if err != nil {
		logger.Fatalf("error: %s", err.Error())
	}

	// {{{1 Update the board and republish the page
	record := leaderboard.Update(records, groupname, now, accuracy, rmse)

	if err := board.Save(ctx, records); err != nil {
		logger.Fatalf("error: %s", err.Error())
	}

	if err := leaderboard.Render(env.LeaderboardPage, "Final Project", records); err != nil {
		logger.Fatalf("error: %s", err.Error())
	}

	// {{{1 Report the result
	banner := strings.Repeat("*", 72)
	fmt.Println(banner)
	fmt.Printf("Your project results as of %s:\n", now.Format(time.RFC1123))
	fmt.Println(banner)
	fmt.Printf("Team: %s\n", groupname)
	fmt.Printf("Accuracy: %.2f%%, RMSE: %.2f (best so far: %.4f)\n",
		accuracy[leaderboard.QuizSet]*100, rmse[leaderboard.QuizSet],
		record.BestRMSE())
}

// readLines reads a plain text file as lines, ignoring one trailing newline
func readLines(path string) ([]string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %s", path, err.Error())
	}

	return strings.Split(strings.TrimSuffix(string(contents), "\n"), "\n"), nil
}

// userMessage prefers an error's user presentable form when it has one
func userMessage(err error) string {
	if formatErr, ok := err.(archive.FormatError); ok {
		return formatErr.UserError()
	}

	return err.Error()
}
