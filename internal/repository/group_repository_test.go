package repository

import (
	"testing"
	"time"

	"github.com/pintuan-next/internal/constants"
	"github.com/pintuan-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupGroupRepositoryTest(t *testing.T) (*GormGroupRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Group{}); err != nil {
		t.Fatalf("migrate group failed: %v", err)
	}
	return NewGroupRepository(db), db
}

func createGroupRow(t *testing.T, db *gorm.DB, groupNo, qrCode string) *models.Group {
	t.Helper()
	group := &models.Group{
		GroupNo:     groupNo,
		ProductID:   1,
		StoreID:     1,
		CreatorID:   1,
		TargetUnits: 5,
		NormalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		GroupPrice:  models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		Status:      constants.GroupStatusActive,
		ExpiresAt:   time.Now().Add(time.Hour),
		QRCode:      qrCode,
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("create group failed: %v", err)
	}
	return group
}

func TestGetByIDForUpdateInsideTransaction(t *testing.T) {
	repo, db := setupGroupRepositoryTest(t)
	created := createGroupRow(t, db, "PT20260901000000000001", "")

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).GetByIDForUpdate(created.ID)
		if err != nil {
			return err
		}
		if locked == nil || locked.ID != created.ID {
			t.Fatalf("locked fetch mismatch: %+v", locked)
		}
		missing, err := repo.WithTx(tx).GetByIDForUpdate(created.ID + 1000)
		if err != nil {
			return err
		}
		if missing != nil {
			t.Fatalf("expected nil for missing group, got %+v", missing)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("locked fetch transaction failed: %v", err)
	}
}

func TestGetByQRCodeForUpdate(t *testing.T) {
	repo, db := setupGroupRepositoryTest(t)
	created := createGroupRow(t, db, "PT20260901000000000002", "PTQRAABBCCDDEEFF00112233445566778899")

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).GetByQRCodeForUpdate(" PTQRAABBCCDDEEFF00112233445566778899 ")
		if err != nil {
			return err
		}
		if locked == nil || locked.ID != created.ID {
			t.Fatalf("locked fetch by code mismatch: %+v", locked)
		}
		blank, err := repo.WithTx(tx).GetByQRCodeForUpdate("   ")
		if err != nil {
			return err
		}
		if blank != nil {
			t.Fatalf("expected nil for blank code, got %+v", blank)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("locked fetch transaction failed: %v", err)
	}
}
