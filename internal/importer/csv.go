package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-portal-backend/internal/model"
	"campus-portal-backend/internal/schedule"
)

// RowError reports why a CSV line was rejected. Line numbers are 1-based and
// include the header.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Result summarizes a bulk import. Bad rows are skipped and reported; good
// rows are written in a single transaction.
type Result struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors,omitempty"`
}

// Rooms loads rooms from CSV with header "name,capacity". Existing rooms are
// updated by name.
func Rooms(db *gorm.DB, r io.Reader) (Result, error) {
	rows, err := readAll(r, []string{"name", "capacity"})
	if err != nil {
		return Result{}, err
	}

	var result Result
	var rooms []model.Room
	for _, row := range rows {
		name := strings.TrimSpace(row.fields[0])
		capacity, convErr := strconv.Atoi(strings.TrimSpace(row.fields[1]))
		switch {
		case name == "":
			result.reject(row.line, "name is required")
		case convErr != nil || capacity <= 0:
			result.reject(row.line, fmt.Sprintf("invalid capacity %q", row.fields[1]))
		default:
			rooms = append(rooms, model.Room{Name: name, Capacity: capacity})
		}
	}

	if len(rooms) > 0 {
		err = db.Transaction(func(tx *gorm.DB) error {
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"capacity", "updated_at"}),
			}).Create(&rooms).Error
		})
		if err != nil {
			return Result{}, fmt.Errorf("room import failed: %w", err)
		}
	}
	result.Imported = len(rooms)
	log.Printf("room import: %d imported, %d skipped", result.Imported, result.Skipped)
	return result, nil
}

// Timetable loads timetable entries from CSV with header
// "course_code,subject,room,day,start_time,end_time,lecturers". The room
// column is a room name, lecturers a semicolon-separated list of account
// emails; both must already exist.
func Timetable(db *gorm.DB, r io.Reader) (Result, error) {
	rows, err := readAll(r, []string{"course_code", "subject", "room", "day", "start_time", "end_time", "lecturers"})
	if err != nil {
		return Result{}, err
	}

	var result Result
	var entries []model.TimetableEntry
	for _, row := range rows {
		entry, rowErr := timetableRow(db, row.fields)
		if rowErr != "" {
			result.reject(row.line, rowErr)
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) > 0 {
		err = db.Transaction(func(tx *gorm.DB) error {
			for i := range entries {
				if err := tx.Create(&entries[i]).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return Result{}, fmt.Errorf("timetable import failed: %w", err)
		}
	}
	result.Imported = len(entries)
	log.Printf("timetable import: %d imported, %d skipped", result.Imported, result.Skipped)
	return result, nil
}

func timetableRow(db *gorm.DB, fields []string) (model.TimetableEntry, string) {
	courseCode := strings.TrimSpace(fields[0])
	subject := strings.TrimSpace(fields[1])
	roomName := strings.TrimSpace(fields[2])
	day := strings.TrimSpace(fields[3])
	start := strings.TrimSpace(fields[4])
	end := strings.TrimSpace(fields[5])

	if courseCode == "" || subject == "" {
		return model.TimetableEntry{}, "course_code and subject are required"
	}
	if !model.ValidWeekday(day) {
		return model.TimetableEntry{}, fmt.Sprintf("invalid day %q", day)
	}
	if _, err := schedule.ParseInterval(start, end); err != nil {
		return model.TimetableEntry{}, err.Error()
	}

	var room model.Room
	if err := db.Where("name = ?", roomName).First(&room).Error; err != nil {
		return model.TimetableEntry{}, fmt.Sprintf("unknown room %q", roomName)
	}

	var lecturers []model.User
	for _, email := range strings.Split(fields[6], ";") {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		var u model.User
		if err := db.Where("email = ? AND role = ?", email, model.RoleLecturer).First(&u).Error; err != nil {
			return model.TimetableEntry{}, fmt.Sprintf("unknown lecturer %q", email)
		}
		lecturers = append(lecturers, u)
	}

	return model.TimetableEntry{
		CourseCode: courseCode,
		Subject:    subject,
		RoomID:     room.ID,
		Day:        day,
		StartTime:  start,
		EndTime:    end,
		Lecturers:  lecturers,
	}, ""
}

type row struct {
	line   int
	fields []string
}

// readAll parses the CSV and checks the header matches the expected columns.
func readAll(r io.Reader, header []string) ([]row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV: expected header %q", strings.Join(header, ","))
	}

	got := make([]string, len(records[0]))
	for i, h := range records[0] {
		got[i] = strings.ToLower(strings.TrimSpace(h))
	}
	if len(got) != len(header) {
		return nil, fmt.Errorf("expected header %q, got %q", strings.Join(header, ","), strings.Join(got, ","))
	}
	for i := range header {
		if got[i] != header[i] {
			return nil, fmt.Errorf("expected header %q, got %q", strings.Join(header, ","), strings.Join(got, ","))
		}
	}

	rows := make([]row, 0, len(records)-1)
	for i, fields := range records[1:] {
		rows = append(rows, row{line: i + 2, fields: fields})
	}
	return rows, nil
}

func (r *Result) reject(line int, msg string) {
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Line: line, Message: msg})
}
