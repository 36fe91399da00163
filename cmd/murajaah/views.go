package main

import (
	"fmt"
	"strconv"

	"murajaah/internal/api"
)

func lineRange(task api.Task) string {
	if task.StartLine == task.EndLine {
		return strconv.Itoa(task.StartLine)
	}
	return fmt.Sprintf("%d-%d", task.StartLine, task.EndLine)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func taskTable(tasks ...api.Task) string {
	headers := []string{"ID", "Page", "Lines", "Stage", "Passed", "Failed", "Pending", "Status", "Deadline"}
	aligns := []columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft}
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, []string{
			strconv.FormatInt(task.ID, 10),
			strconv.Itoa(task.PageNumber),
			lineRange(task),
			task.Stage,
			fmt.Sprintf("%d/%d", task.PassedCount, task.RequiredCount),
			strconv.Itoa(task.FailedCount),
			strconv.Itoa(task.PendingCount),
			task.Status,
			orDash(task.Deadline),
		})
	}
	return renderTable(headers, rows, aligns)
}

func submissionTable(submissions ...api.Submission) string {
	headers := []string{"ID", "Task", "Status", "Score", "Queued", "Attempts", "Created"}
	aligns := []columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignLeft, alignRight, alignLeft}
	rows := make([][]string, 0, len(submissions))
	for _, submission := range submissions {
		score := "-"
		if submission.AIScore != nil {
			score = strconv.Itoa(*submission.AIScore)
		}
		rows = append(rows, []string{
			strconv.FormatInt(submission.ID, 10),
			strconv.FormatInt(submission.TaskID, 10),
			submission.Status,
			score,
			yesNo(submission.QueuedForReview),
			strconv.Itoa(submission.DeliveryAttempts),
			orDash(submission.CreatedAt),
		})
	}
	return renderTable(headers, rows, aligns)
}

func progressTable(progress api.Progress) string {
	headers := []string{"Student", "Group", "Page", "Line", "Stage"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}
	rows := [][]string{{
		progress.StudentID,
		progress.GroupID,
		strconv.Itoa(progress.CurrentPage),
		strconv.Itoa(progress.CurrentLine),
		progress.CurrentStage,
	}}
	return renderTable(headers, rows, aligns)
}

func policyTable(policy api.Policy) string {
	headers := []string{"Field", "Value"}
	aligns := []columnAlignment{alignLeft, alignLeft}
	rows := [][]string{
		{"Group", policy.GroupID},
		{"Mentor", policy.MentorID},
		{"Level", strconv.Itoa(policy.Level)},
		{"Mode", policy.VerificationMode},
		{"AI enabled", yesNo(policy.AIEnabled)},
		{"Accept threshold", strconv.Itoa(policy.AcceptThreshold)},
		{"Reject threshold", strconv.Itoa(policy.RejectThreshold)},
		{"Required (learn)", strconv.Itoa(policy.RequiredLearning)},
		{"Required (half page)", strconv.Itoa(policy.RequiredHalfPage)},
		{"Required (full page)", strconv.Itoa(policy.RequiredFullPage)},
		{"Hours (learn)", strconv.FormatFloat(policy.HoursLearning, 'g', -1, 64)},
		{"Hours (half page)", strconv.FormatFloat(policy.HoursHalfPage, 'g', -1, 64)},
		{"Hours (full page)", strconv.FormatFloat(policy.HoursFullPage, 'g', -1, 64)},
	}
	return renderTable(headers, rows, aligns)
}
