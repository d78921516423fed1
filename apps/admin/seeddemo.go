package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AcaDesk/acadesk-server/core/class"
	"github.com/AcaDesk/acadesk-server/core/student"
)

// createOrgFunc inserts the organization row; tests substitute it so the
// seed can run without a live DB.
var createOrgFunc = func(db *sql.DB, id, name string) error {
	_, err := db.Exec(`INSERT INTO org (id, name) VALUES ($1, $2)`, id, name)
	return err
}

// seedDemo creates a fresh organization with a sample class and roster so a
// new install has something to click through.
func (cli *commandLine) seedDemo(orgName string) error {
	ctx := context.Background()
	now := time.Now().UTC()

	orgID := uuid.New().String()
	if err := createOrgFunc(cli.db, orgID, orgName); err != nil {
		return err
	}

	cl, err := cli.clsRepo.CreateClass(ctx, class.Class{
		OrgID:     orgID,
		Name:      "Math G5",
		Subject:   "math",
		Capacity:  12,
		Schedule:  "Mon/Wed 16:00",
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}

	names := []string{"Ada Kim", "Ben Park", "Chloe Lee"}
	for i, name := range names {
		st, err := cli.stdRepo.CreateStudent(ctx, student.Student{
			OrgID:      orgID,
			Code:       fmt.Sprintf("s%03d", i+1),
			Name:       name,
			GradeLevel: "5",
			Status:     student.StatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return err
		}
		if _, err := cli.clsRepo.CreateEnrollment(ctx, class.Enrollment{
			OrgID:      orgID,
			ClassID:    cl.ID,
			StudentID:  st.ID,
			EnrolledAt: now,
		}); err != nil {
			return err
		}
	}

	fmt.Printf("Demo organization created: %s (%s)\n", orgName, orgID)
	return nil
}
