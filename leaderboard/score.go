package leaderboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Score grades submitted prediction lines against ground truth answer lines.
// Each answer line is "<truth> <is_quiz>" where is_quiz partitions lines
// into the test and quiz sets. Each submission line's first whitespace
// delimited token is the numeric guess. Returned accuracy and RMSE slices
// are indexed by TestSet / QuizSet.
func Score(submitted, answers []string) (accuracy []float64, rmse []float64, err error) {
	if len(submitted) != len(answers) {
		return nil, nil, fmt.Errorf("submission must be %d lines, not %d",
			len(answers), len(submitted))
	}

	correct := []float64{0, 0}
	sqErr := []float64{0, 0}
	n := []float64{0, 0}

	for i := range answers {
		answerFields := strings.Fields(answers[i])
		if len(answerFields) != 2 {
			return nil, nil, fmt.Errorf("answer line %d is malformed: %q",
				i+1, answers[i])
		}

		truth, err := strconv.ParseFloat(answerFields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("answer line %d has a non-numeric "+
				"truth value: %q", i+1, answerFields[0])
		}

		isQuiz, err := strconv.Atoi(answerFields[1])
		if err != nil || (isQuiz != TestSet && isQuiz != QuizSet) {
			return nil, nil, fmt.Errorf("answer line %d has an invalid quiz "+
				"flag: %q", i+1, answerFields[1])
		}

		guessFields := strings.Fields(submitted[i])
		if len(guessFields) == 0 {
			return nil, nil, fmt.Errorf("prediction line %d is empty", i+1)
		}

		guess, err := strconv.ParseFloat(guessFields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("prediction line %d is not numeric: %q",
				i+1, guessFields[0])
		}

		n[isQuiz]++
		if math.Round(guess) == math.Round(truth) {
			correct[isQuiz]++
		}
		sqErr[isQuiz] += (guess - truth) * (guess - truth)
	}

	accuracy = []float64{0, 0}
	rmse = []float64{0, 0}
	for set := range n {
		if n[set] == 0 {
			return nil, nil, fmt.Errorf("answer key has no lines in set %d", set)
		}

		accuracy[set] = correct[set] / n[set]
		rmse[set] = math.Sqrt(sqErr[set] / n[set])
	}

	return accuracy, rmse, nil
}
