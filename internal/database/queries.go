package database

// Contact queries
const (
	contactColumns = `id, name, phone, email, organization, tags, status, notes, avatar_path, created_at, updated_at`

	InsertContactQuery = `
		INSERT INTO contacts (` + contactColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	UpdateContactQuery = `
		UPDATE contacts
		SET name = ?, phone = ?, email = ?, organization = ?, tags = ?,
			status = ?, notes = ?, avatar_path = ?, updated_at = ?
		WHERE id = ?
	`

	SelectContactByIDQuery = `SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`

	SelectAllContactsQuery = `SELECT ` + contactColumns + ` FROM contacts ORDER BY name ASC`

	SearchContactsQuery = `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE (name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\'
			OR organization LIKE ? ESCAPE '\')
	`

	SearchContactsStatusClause = ` AND status = ?`

	SearchContactsOrderClause = ` ORDER BY name ASC`

	DeleteContactQuery = `DELETE FROM contacts WHERE id = ?`
)

// Template queries
const (
	templateColumns = `id, title, content, variables, category, created_at, updated_at`

	InsertTemplateQuery = `
		INSERT INTO templates (` + templateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	UpdateTemplateQuery = `
		UPDATE templates
		SET title = ?, content = ?, variables = ?, category = ?, updated_at = ?
		WHERE id = ?
	`

	SelectTemplateByIDQuery = `SELECT ` + templateColumns + ` FROM templates WHERE id = ?`

	SelectAllTemplatesQuery = `SELECT ` + templateColumns + ` FROM templates ORDER BY category ASC, title ASC`

	DeleteTemplateQuery = `DELETE FROM templates WHERE id = ?`
)

// Message history queries
const (
	selectHistoryJoined = `
		SELECT mh.id, mh.contact_id, mh.message_content, mh.timestamp, mh.template_id,
			mh.sent_via, mh.send_status, mh.metadata,
			COALESCE(c.name, ''), COALESCE(c.phone, ''), COALESCE(t.title, '')
		FROM message_history mh
		LEFT JOIN contacts c ON mh.contact_id = c.id
		LEFT JOIN templates t ON mh.template_id = t.id
	`

	InsertHistoryQuery = `
		INSERT INTO message_history (id, contact_id, message_content, timestamp, template_id, sent_via, send_status, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	SelectHistoryByIDQuery = selectHistoryJoined + ` WHERE mh.id = ?`

	SelectAllHistoryQuery = selectHistoryJoined + ` ORDER BY mh.timestamp DESC`

	SelectHistoryByContactQuery = selectHistoryJoined + ` WHERE mh.contact_id = ? ORDER BY mh.timestamp DESC`

	SearchHistoryQuery = selectHistoryJoined + `
		WHERE mh.message_content LIKE ? ESCAPE '\' OR c.name LIKE ? ESCAPE '\'
		ORDER BY mh.timestamp DESC
	`
)

// Event queries
const (
	eventColumns = `id, contact_id, contact_name, event_type, event_date, event_time, notes, color,
		is_completed, reminder_sent, created_at, updated_at`

	eventOrder = ` ORDER BY event_date ASC, event_time ASC`

	InsertEventQuery = `
		INSERT INTO events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	UpdateEventQuery = `
		UPDATE events
		SET contact_id = ?, contact_name = ?, event_type = ?, event_date = ?, event_time = ?,
			notes = ?, color = ?, is_completed = ?, reminder_sent = ?, updated_at = ?
		WHERE id = ?
	`

	SelectEventByIDQuery = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`

	SelectAllEventsQuery = `SELECT ` + eventColumns + ` FROM events` + eventOrder

	SelectEventsInRangeQuery = `
		SELECT ` + eventColumns + `
		FROM events
		WHERE event_date >= ? AND event_date <= ? AND is_completed = 0` + eventOrder

	SelectEventsByDateQuery = `SELECT ` + eventColumns + ` FROM events WHERE event_date = ? ORDER BY event_time ASC`

	SelectEventsByContactQuery = `SELECT ` + eventColumns + ` FROM events WHERE contact_id = ?` + eventOrder

	SelectEventsNeedingReminderQuery = `
		SELECT ` + eventColumns + `
		FROM events
		WHERE event_date = ? AND reminder_sent = 0 AND is_completed = 0
		ORDER BY event_time ASC
	`

	MarkEventCompletedQuery = `UPDATE events SET is_completed = 1, updated_at = ? WHERE id = ?`

	MarkEventReminderSentQuery = `UPDATE events SET reminder_sent = 1, updated_at = ? WHERE id = ?`

	DeleteEventQuery = `DELETE FROM events WHERE id = ?`
)

// Setting queries
const (
	SelectSettingQuery = `SELECT key, value, updated_at FROM settings WHERE key = ?`

	SelectAllSettingsQuery = `SELECT key, value, updated_at FROM settings ORDER BY key ASC`

	UpsertSettingQuery = `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
)

const SelectStatsQuery = `
	SELECT
		(SELECT COUNT(*) FROM contacts),
		(SELECT COUNT(*) FROM templates),
		(SELECT COUNT(*) FROM message_history),
		(SELECT COUNT(*) FROM events)
`
