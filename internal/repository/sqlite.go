package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/vaquejada/senhas/internal/errors"
	"github.com/vaquejada/senhas/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db, now: time.Now}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// NewWithDB wraps an existing connection without running migrations
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			city TEXT,
			starts_at TEXT,
			ends_at TEXT,
			cattle_per_password INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			unit_price_cents INTEGER NOT NULL,
			max_runners INTEGER NOT NULL,
			starts_at TEXT,
			ends_at TEXT,
			FOREIGN KEY (event_id) REFERENCES events(id)
		)`,
		`CREATE TABLE IF NOT EXISTS purchases (
			id TEXT PRIMARY KEY,
			event_id INTEGER NOT NULL,
			category_id INTEGER NOT NULL,
			buyer_id TEXT NOT NULL,
			numbers TEXT NOT NULL,
			total_cents INTEGER NOT NULL,
			status TEXT NOT NULL,
			external_ref TEXT,
			created_at TEXT NOT NULL,
			FOREIGN KEY (category_id) REFERENCES categories(id)
		)`,
		`CREATE TABLE IF NOT EXISTS passwords (
			id TEXT PRIMARY KEY,
			category_id INTEGER NOT NULL,
			number INTEGER NOT NULL,
			status TEXT NOT NULL,
			purchase_id TEXT,
			buyer_id TEXT,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (category_id) REFERENCES categories(id),
			UNIQUE(category_id, number)
		)`,
		`CREATE TABLE IF NOT EXISTS staff (
			id TEXT NOT NULL,
			event_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			PRIMARY KEY (id, event_id),
			FOREIGN KEY (event_id) REFERENCES events(id)
		)`,
		`CREATE TABLE IF NOT EXISTS votes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			judge_id TEXT NOT NULL,
			event_id INTEGER NOT NULL,
			password_id TEXT NOT NULL,
			cattle_number INTEGER NOT NULL DEFAULT 1,
			vote TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (judge_id, event_id) REFERENCES staff(id, event_id),
			FOREIGN KEY (password_id) REFERENCES passwords(id),
			UNIQUE(judge_id, password_id, cattle_number)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_event ON categories(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_passwords_category ON passwords(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_passwords_purchase ON passwords(purchase_id)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_event ON votes(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_judge ON votes(judge_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339Nano)
}

func formatTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return formatTime(*t)
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	t := parseTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

// ==================== Event Methods ====================

// CreateEvent inserts an event and returns its id
func (r *Repository) CreateEvent(ctx context.Context, e models.Event) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO events (name, city, starts_at, ends_at, cattle_per_password)
		VALUES (?, ?, ?, ?, ?)
	`, e.Name, e.City, formatTime(e.StartsAt), formatTime(e.EndsAt), e.CattlePerPassword)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetEvent returns one event
func (r *Repository) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	var e models.Event
	var city, startsAt, endsAt sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, city, starts_at, ends_at, cattle_per_password FROM events WHERE id = ?
	`, id).Scan(&e.ID, &e.Name, &city, &startsAt, &endsAt, &e.CattlePerPassword)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.City = city.String
	e.StartsAt = parseTime(startsAt)
	e.EndsAt = parseTime(endsAt)
	return &e, nil
}

// ListEvents returns all events ordered by start
func (r *Repository) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, city, starts_at, ends_at, cattle_per_password
		FROM events
		ORDER BY starts_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		var city, startsAt, endsAt sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &city, &startsAt, &endsAt, &e.CattlePerPassword); err != nil {
			return nil, err
		}
		e.City = city.String
		e.StartsAt = parseTime(startsAt)
		e.EndsAt = parseTime(endsAt)
		events = append(events, e)
	}
	return events, rows.Err()
}

// ==================== Category Methods ====================

// CreateCategory inserts a category and returns its id
func (r *Repository) CreateCategory(ctx context.Context, c models.Category) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (event_id, name, unit_price_cents, max_runners, starts_at, ends_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.EventID, c.Name, c.UnitPriceCents, c.MaxRunners, formatTimePtr(c.StartsAt), formatTimePtr(c.EndsAt))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const categoryColumns = `
	c.id, c.event_id, c.name, c.unit_price_cents, c.max_runners, c.starts_at, c.ends_at,
	(SELECT COUNT(*) FROM passwords p WHERE p.category_id = c.id AND p.status != 'available')
`

func scanCategory(scan func(dest ...any) error) (models.Category, error) {
	var c models.Category
	var startsAt, endsAt sql.NullString
	if err := scan(&c.ID, &c.EventID, &c.Name, &c.UnitPriceCents, &c.MaxRunners, &startsAt, &endsAt, &c.CurrentRunners); err != nil {
		return c, err
	}
	c.StartsAt = parseTimePtr(startsAt)
	c.EndsAt = parseTimePtr(endsAt)
	return c, nil
}

// GetCategory returns one category with its current occupancy
func (r *Repository) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories c WHERE c.id = ?`, id)
	c, err := scanCategory(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns an event's categories with their current occupancy
func (r *Repository) ListCategories(ctx context.Context, eventID int) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories c WHERE c.event_id = ? ORDER BY c.id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ==================== Password Methods ====================

func scanPassword(scan func(dest ...any) error) (models.SlotRecord, error) {
	var p models.SlotRecord
	var status string
	var purchaseID, buyerID sql.NullString
	if err := scan(&p.ID, &p.CategoryID, &p.Number, &status, &purchaseID, &buyerID); err != nil {
		return p, err
	}
	p.Status = models.SlotStatus(status)
	p.PurchaseID = purchaseID.String
	p.BuyerID = buyerID.String
	return p, nil
}

// ListPasswords returns every backing record of a category ordered by number
func (r *Repository) ListPasswords(ctx context.Context, categoryID int) ([]models.SlotRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category_id, number, status, purchase_id, buyer_id
		FROM passwords
		WHERE category_id = ?
		ORDER BY number
	`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.SlotRecord{}
	for rows.Next() {
		p, err := scanPassword(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

// GetPassword returns one backing record
func (r *Repository) GetPassword(ctx context.Context, id string) (*models.SlotRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, category_id, number, status, purchase_id, buyer_id FROM passwords WHERE id = ?
	`, id)
	p, err := scanPassword(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ReservePasswords claims numbers for a purchase in one transaction. Numbers without a
// record get one; numbers whose record is available are taken over. If any number is
// already claimed the whole reservation is rolled back with a STALE_SLOT conflict.
func (r *Repository) ReservePasswords(ctx context.Context, categoryID int, numbers []int, purchaseID, buyerID string) ([]models.SlotRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var maxRunners int
	err = tx.QueryRowContext(ctx, `SELECT max_runners FROM categories WHERE id = ?`, categoryID).Scan(&maxRunners)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	now := r.timestamp()
	reserved := make([]models.SlotRecord, 0, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > maxRunners {
			return nil, errors.Validationf("password %d is outside 1..%d", n, maxRunners)
		}

		var id, status string
		err := tx.QueryRowContext(ctx, `SELECT id, status FROM passwords WHERE category_id = ? AND number = ?`, categoryID, n).Scan(&id, &status)
		switch {
		case err == sql.ErrNoRows:
			id = uuid.NewString()
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO passwords (id, category_id, number, status, purchase_id, buyer_id, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, id, categoryID, n, models.StatusReserved, purchaseID, buyerID, now); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		case models.SlotStatus(status) != models.StatusAvailable:
			return nil, StaleSlot(n, status)
		default:
			if _, err := tx.ExecContext(ctx, `
				UPDATE passwords SET status = ?, purchase_id = ?, buyer_id = ?, updated_at = ? WHERE id = ?
			`, models.StatusReserved, purchaseID, buyerID, now, id); err != nil {
				return nil, err
			}
		}

		reserved = append(reserved, models.SlotRecord{
			ID:         id,
			CategoryID: categoryID,
			Number:     n,
			Status:     models.StatusReserved,
			PurchaseID: purchaseID,
			BuyerID:    buyerID,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return reserved, nil
}

// ReleasePurchase returns every password still reserved by a purchase to available
func (r *Repository) ReleasePurchase(ctx context.Context, purchaseID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE passwords SET status = ?, purchase_id = NULL, buyer_id = NULL, updated_at = ?
		WHERE purchase_id = ? AND status = ?
	`, models.StatusAvailable, r.timestamp(), purchaseID, models.StatusReserved)
	return err
}

// SetPasswordStatus moves a backing record to another status
func (r *Repository) SetPasswordStatus(ctx context.Context, id string, status models.SlotStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE passwords SET status = ?, updated_at = ? WHERE id = ?`, status, r.timestamp(), id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== Purchase Methods ====================

// CreatePurchase records a purchase handed to the payment service
func (r *Repository) CreatePurchase(ctx context.Context, p models.Purchase) error {
	numbers, err := json.Marshal(p.Numbers)
	if err != nil {
		return err
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO purchases (id, event_id, category_id, buyer_id, numbers, total_cents, status, external_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.EventID, p.CategoryID, p.BuyerID, string(numbers), p.TotalCents, p.Status, p.ExternalRef, formatTime(createdAt))
	return err
}

// GetPurchase returns one purchase
func (r *Repository) GetPurchase(ctx context.Context, id string) (*models.Purchase, error) {
	var p models.Purchase
	var numbers string
	var externalRef, createdAt sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, event_id, category_id, buyer_id, numbers, total_cents, status, external_ref, created_at
		FROM purchases WHERE id = ?
	`, id).Scan(&p.ID, &p.EventID, &p.CategoryID, &p.BuyerID, &numbers, &p.TotalCents, &p.Status, &externalRef, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(numbers), &p.Numbers); err != nil {
		return nil, err
	}
	p.ExternalRef = externalRef.String
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

// SetPurchaseStatus updates a purchase's status and the payment service's reference
func (r *Repository) SetPurchaseStatus(ctx context.Context, id, status, externalRef string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE purchases SET status = ?, external_ref = ? WHERE id = ?`, status, externalRef, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== Staff Methods ====================

// CreateStaff inserts a judge or speaker. The same person may be staffed on many events,
// but only once per event.
func (r *Repository) CreateStaff(ctx context.Context, s models.Staff) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO staff (id, event_id, name, role) VALUES (?, ?, ?, ?)`, s.ID, s.EventID, s.Name, s.Role)
	if isUniqueViolation(err) {
		return errors.Conflictf("staff %s is already assigned to event %d", s.ID, s.EventID)
	}
	return err
}

// GetStaff returns a staff member's assignment to one event
func (r *Repository) GetStaff(ctx context.Context, id string, eventID int) (*models.Staff, error) {
	var s models.Staff
	err := r.db.QueryRowContext(ctx, `SELECT id, event_id, name, role FROM staff WHERE id = ? AND event_id = ?`, id, eventID).Scan(&s.ID, &s.EventID, &s.Name, &s.Role)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListStaff returns an event's staff ordered by name
func (r *Repository) ListStaff(ctx context.Context, eventID int) ([]models.Staff, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, event_id, name, role FROM staff WHERE event_id = ? ORDER BY name`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staff := []models.Staff{}
	for rows.Next() {
		var s models.Staff
		if err := rows.Scan(&s.ID, &s.EventID, &s.Name, &s.Role); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

// ==================== Vote Methods ====================

const voteColumns = `v.id, v.judge_id, s.name, v.event_id, v.password_id, v.cattle_number, v.vote, v.created_at`

func scanVote(scan func(dest ...any) error) (models.CattleRunVote, error) {
	var v models.CattleRunVote
	var judgeName, createdAt sql.NullString
	var vote string
	if err := scan(&v.ID, &v.JudgeID, &judgeName, &v.EventID, &v.PasswordID, &v.CattleNumber, &vote, &createdAt); err != nil {
		return v, err
	}
	v.JudgeName = judgeName.String
	v.Vote = models.VoteValue(vote)
	v.CreatedAt = parseTime(createdAt)
	return v, nil
}

func (r *Repository) queryVotes(ctx context.Context, where string, args ...any) ([]models.CattleRunVote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+voteColumns+`
		FROM votes v
		LEFT JOIN staff s ON s.id = v.judge_id AND s.event_id = v.event_id
		WHERE `+where+`
		ORDER BY v.password_id, v.cattle_number, v.judge_id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []models.CattleRunVote{}
	for rows.Next() {
		v, err := scanVote(rows.Scan)
		if err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (r *Repository) queryVote(ctx context.Context, where string, args ...any) (*models.CattleRunVote, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+voteColumns+`
		FROM votes v
		LEFT JOIN staff s ON s.id = v.judge_id AND s.event_id = v.event_id
		WHERE `+where, args...)
	v, err := scanVote(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVote returns one vote by id
func (r *Repository) GetVote(ctx context.Context, id int) (*models.CattleRunVote, error) {
	return r.queryVote(ctx, `v.id = ?`, id)
}

// FindVote returns the vote for a (judge, password, cattle run), if any
func (r *Repository) FindVote(ctx context.Context, judgeID, passwordID string, cattleNumber int) (*models.CattleRunVote, error) {
	return r.queryVote(ctx, `v.judge_id = ? AND v.password_id = ? AND v.cattle_number = ?`, judgeID, passwordID, cattleNumber)
}

// InsertVote stores a first vote. A second vote for the same tuple fails with ErrDuplicateVote.
func (r *Repository) InsertVote(ctx context.Context, v models.CattleRunVote) (int64, error) {
	now := r.timestamp()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO votes (judge_id, event_id, password_id, cattle_number, vote, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, v.JudgeID, v.EventID, v.PasswordID, v.Run(), v.Vote, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateVote
		}
		return 0, err
	}
	return result.LastInsertId()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return stderrors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

// UpdateVoteValue overwrites a vote in place
func (r *Repository) UpdateVoteValue(ctx context.Context, id int, vote models.VoteValue) error {
	result, err := r.db.ExecContext(ctx, `UPDATE votes SET vote = ?, updated_at = ? WHERE id = ?`, vote, r.timestamp(), id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListJudgeVotes returns one judge's votes for an event
func (r *Repository) ListJudgeVotes(ctx context.Context, eventID int, judgeID string) ([]models.CattleRunVote, error) {
	return r.queryVotes(ctx, `v.event_id = ? AND v.judge_id = ?`, eventID, judgeID)
}

// ListEventVotes returns every vote cast in an event
func (r *Repository) ListEventVotes(ctx context.Context, eventID int) ([]models.CattleRunVote, error) {
	return r.queryVotes(ctx, `v.event_id = ?`, eventID)
}
