package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"filestore/internal/model"
)

var kycColumnNames = []string{
	"id", "user_id", "status", "session_token", "last_activity_at", "review_comment",
	"reviewed_by", "reviewed_at", "created_by", "created_at", "modified_by", "modified_at",
	"deleted_by", "deleted_at", "is_deleted",
}

func kycRow(rows *sqlmock.Rows, k *model.KycProcess) *sqlmock.Rows {
	return rows.AddRow(
		k.ID, k.UserID, k.Status, k.SessionToken, k.LastActivityAt,
		rowStr(k.ReviewComment), rowStr(k.ReviewedBy), rowTime(k.ReviewedAt),
		k.CreatedBy, k.CreatedAt,
		rowStr(k.ModifiedBy), rowTime(k.ModifiedAt),
		rowStr(k.DeletedBy), rowTime(k.DeletedAt), k.IsDeleted,
	)
}

func sampleCase(id string, status model.KycStatus) *model.KycProcess {
	now := time.Now().UTC()
	return &model.KycProcess{
		ID:             id,
		UserID:         "user-1",
		Status:         status,
		SessionToken:   "G04oui4vEdKDP0AW",
		LastActivityAt: now,
		Audit:          model.Audit{CreatedBy: "user-1", CreatedAt: now},
	}
}

func TestKycPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewKycPostgres(db)
	ctx := context.Background()
	process := sampleCase("case-1", model.KycStatusNew)

	rows := kycRow(sqlmock.NewRows(kycColumnNames), process)
	mock.ExpectQuery("INSERT INTO kyc_processes").
		WithArgs(
			process.ID, process.UserID, process.Status, process.SessionToken,
			process.LastActivityAt, process.CreatedBy, process.CreatedAt, process.IsDeleted,
		).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, process)

	assert.NoError(t, err)
	assert.Equal(t, process.ID, result.ID)
	assert.Equal(t, model.KycStatusNew, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKycPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewKycPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := kycRow(sqlmock.NewRows(kycColumnNames), sampleCase("case-1", model.KycStatusPartiallyCompleted))
		mock.ExpectQuery("SELECT (.+) FROM kyc_processes WHERE id = ?").
			WithArgs("case-1").
			WillReturnRows(rows)

		process, err := repo.FindByID(ctx, "case-1")

		assert.NoError(t, err)
		assert.Equal(t, "case-1", process.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM kyc_processes WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		process, err := repo.FindByID(ctx, "missing")

		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, process)
	})
}

func TestKycPostgres_FindBySessionToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewKycPostgres(db)
	ctx := context.Background()

	rows := kycRow(sqlmock.NewRows(kycColumnNames), sampleCase("case-1", model.KycStatusNew))
	mock.ExpectQuery("SELECT (.+) FROM kyc_processes WHERE session_token = ?").
		WithArgs("G04oui4vEdKDP0AW").
		WillReturnRows(rows)

	process, err := repo.FindBySessionToken(ctx, "G04oui4vEdKDP0AW")

	assert.NoError(t, err)
	assert.Equal(t, "case-1", process.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKycPostgres_FindActiveByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewKycPostgres(db)
	ctx := context.Background()

	rows := kycRow(sqlmock.NewRows(kycColumnNames), sampleCase("case-1", model.KycStatusUnderReview))
	mock.ExpectQuery("SELECT (.+) FROM kyc_processes WHERE user_id = (.+) AND status NOT IN").
		WithArgs("user-1", model.KycStatusVerified, model.KycStatusRejected).
		WillReturnRows(rows)

	process, err := repo.FindActiveByUser(ctx, "user-1")

	assert.NoError(t, err)
	assert.Equal(t, model.KycStatusUnderReview, process.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKycPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewKycPostgres(db)
	ctx := context.Background()

	t.Run("updated", func(t *testing.T) {
		process := sampleCase("case-1", model.KycStatusDocumentsUploaded)
		assert.NoError(t, process.CompleteVerification(true, "all good", "admin-1", time.Now().UTC()))

		mock.ExpectExec("UPDATE kyc_processes").
			WithArgs(
				process.ID, process.Status, process.LastActivityAt,
				nullStr(process.ReviewComment), nullStr(process.ReviewedBy), nullTime(process.ReviewedAt),
				nullStr(process.ModifiedBy), nullTime(process.ModifiedAt),
				nullStr(process.DeletedBy), nullTime(process.DeletedAt), process.IsDeleted,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(ctx, process))
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE kyc_processes").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, sampleCase("gone", model.KycStatusNew))
		assert.True(t, errors.Is(err, sql.ErrNoRows))
	})
}
