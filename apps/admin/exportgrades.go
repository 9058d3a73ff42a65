package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const gradesSheet = "Grades"

var gradesHeader = []interface{}{
	"Quiz taker", "Student email", "Student name", "Quiz", "Score", "Max score", "Completed", "Value", "Timestamp",
}

// exportGrades writes one row per quiz taker grade, with its Pass/Fail value, to an xlsx file.
func (cli *commandLine) exportGrades(out string) error {
	rows, err := cli.assessmentSvc.GradeReport(context.Background())
	if err != nil {
		return errors.Wrap(err, "querying grade report")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err = f.SetSheetName("Sheet1", gradesSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if err = f.SetSheetRow(gradesSheet, "A1", &gradesHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for i, r := range rows {
		quiz := ""
		if r.QuizName != nil {
			quiz = *r.QuizName
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.QuizTakerID, r.StudentEmail, r.StudentName, quiz,
			r.Score, r.MaxScore, r.Completed, r.Value(), r.Timestamp.UTC().Format(time.RFC3339),
		}
		if err = f.SetSheetRow(gradesSheet, cell, &values); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}

	if err = f.SaveAs(out); err != nil {
		return errors.Wrapf(err, "saving %s", out)
	}
	cli.logger.Info("grades exported", "file", out, "rows", len(rows))
	return nil
}
