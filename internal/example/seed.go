package example

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	currencySeed = []struct {
		title    string
		numCode  int
		charCode string
		depth    int
	}{
		{"US Dollar", 840, "USD", 2},
		{"Euro", 978, "EUR", 2},
		{"Russian Ruble", 643, "RUB", 2},
		{"Kazakhstani Tenge", 398, "KZT", 2},
		{"Kuwaiti Dinar", 414, "KWD", 3},
	}
	companyWords = []string{"Acme", "Globex", "Initech", "Umbrella", "Stark", "Wayne", "Hooli", "Vandelay", "Soylent", "Tyrell"}
	loremWords   = []string{"payment", "gateway", "online", "store", "checkout", "secure", "fast", "mobile", "retail", "service", "terminal", "daily"}
	imitations   = []any{nil, "sandbox", "mock"}
	delays       = []any{nil, 5, 10, 30, 60}
)

func sentence(rng *rand.Rand, words int) string {
	out := make([]byte, 0, words*8)
	for i := 0; i < words; i++ {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, loremWords[rng.IntN(len(loremWords))]...)
	}
	if len(out) > 0 && out[0] >= 'a' && out[0] <= 'z' {
		out[0] -= 'a' - 'A'
	}
	return string(out) + "."
}

// Seed fills empty demo tables: 5 currencies, 10 merchants, 15 terminals
// and a few users. Tables that already hold rows are left alone.
func Seed(ctx context.Context, db *sql.DB, gdb *gorm.DB) error {
	rng := rand.New(rand.NewPCG(42, 2025))

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM terminal`).Scan(&count); err != nil {
		return fmt.Errorf("failed to inspect demo data: %w", err)
	}
	if count == 0 {
		if err := seedPayments(ctx, db, rng); err != nil {
			return err
		}
	}

	var users int64
	if err := gdb.WithContext(ctx).Model(&User{}).Count(&users).Error; err != nil {
		return fmt.Errorf("failed to inspect users: %w", err)
	}
	if users == 0 {
		if err := seedUsers(ctx, gdb); err != nil {
			return err
		}
	}
	return nil
}

func seedPayments(ctx context.Context, db *sql.DB, rng *rand.Rand) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range currencySeed {
		if _, err := tx.ExecContext(ctx, `INSERT INTO currency (title, num_code, char_code, depth) VALUES (?, ?, ?, ?)`,
			c.title, c.numCode, c.charCode, c.depth); err != nil {
			return fmt.Errorf("failed to seed currency %s: %w", c.charCode, err)
		}
	}
	for i, name := range companyWords {
		if _, err := tx.ExecContext(ctx, `INSERT INTO merchant (user_id, title) VALUES (?, ?)`,
			1+rng.IntN(10_000), fmt.Sprintf("%s %d", name, i+1)); err != nil {
			return fmt.Errorf("failed to seed merchant: %w", err)
		}
	}
	for i := 0; i < 15; i++ {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO terminal (title, description, secret_key, merchant_id, currency_id, is_h2h, is_active,
				public_id, imitation_api, test_mode, registered_delay)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fmt.Sprintf("%s terminal %d", companyWords[rng.IntN(len(companyWords))], i+1),
			sentence(rng, 6),
			uuid.NewString(),
			1+rng.IntN(len(companyWords)),
			1+rng.IntN(len(currencySeed)),
			rng.IntN(2) == 1,
			rng.IntN(2) == 1,
			uuid.NewString(),
			imitations[rng.IntN(len(imitations))],
			rng.IntN(2) == 1,
			delays[rng.IntN(len(delays))],
		); err != nil {
			return fmt.Errorf("failed to seed terminal: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit demo data: %w", err)
	}
	customLog.Println("Example: Seeded currencies, merchants and terminals.")
	return nil
}

func seedUsers(ctx context.Context, gdb *gorm.DB) error {
	lastLogin := time.Date(2025, 6, 16, 9, 45, 0, 0, time.UTC)
	users := []User{
		{Username: "alice", Email: "alice@example.com", IsActive: true, Profile: datatypes.JSON(`{"theme":"dark"}`), LastLogin: &lastLogin},
		{Username: "bob", Email: "bob@example.com", IsActive: true, Profile: datatypes.JSON(`{"theme":"light"}`)},
		{Username: "carol", Email: "carol@example.com", IsActive: false, Profile: datatypes.JSON(`{}`)},
	}
	var inactive []int
	for i, u := range users {
		if !u.IsActive {
			inactive = append(inactive, i)
		}
	}
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&users).Error; err != nil {
			return err
		}
		// the is_active default replaces false on insert
		for _, i := range inactive {
			if err := tx.Model(&users[i]).Update("is_active", false).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	customLog.Println("Example: Seeded users.")
	return nil
}
