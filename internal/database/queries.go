package database

import (
	"time"
)

const (
	getMessageQuery = "SELECT m.id, m.channel_id, m.user_id, m.content, m.is_edited, m.created_at, u.username, u.display_name " +
		"FROM messages m JOIN users u ON m.user_id = u.id WHERE m.id = $1 LIMIT 1"
)

func (db *PgStore) CreateUser(params CreateUserParams) (User, error) {
	displayName := params.DisplayName
	if displayName == "" {
		displayName = params.Username
	}

	res := db.conn.QueryRow(
		"INSERT INTO users (username, email, display_name, status, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, username, email, display_name, status, created_at",
		params.Username,
		params.Email,
		displayName,
		"online",
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.Email,
		&u.DisplayName,
		&u.Status,
		&u.CreatedAt,
	)

	return u, storeError(err)
}

func (db *PgStore) GetUsers() ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT id, username, email, display_name, status, created_at FROM users ORDER BY id",
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	var users = make([]User, 0)
	for rows.Next() {
		var u User
		if err = rows.Scan(&u.Id, &u.Username, &u.Email, &u.DisplayName, &u.Status, &u.CreatedAt); err != nil {
			break
		}

		users = append(users, u)
	}

	return users, storeError(err)
}

func (db *PgStore) GetUserById(id int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, display_name, status, created_at FROM users "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Username,
		&u.Email,
		&u.DisplayName,
		&u.Status,
		&u.CreatedAt,
	)

	return u, storeError(err)
}

func (db *PgStore) FindUserByUsernameEmail(username, email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, display_name, status, created_at FROM users "+
			"WHERE username = $1 AND email = $2 LIMIT 1",
		username,
		email,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Username,
		&u.Email,
		&u.DisplayName,
		&u.Status,
		&u.CreatedAt,
	)

	return u, storeError(err)
}

func (db *PgStore) CreateChannel(params CreateChannelParams) (Channel, error) {
	res := db.conn.QueryRow(
		"INSERT INTO channels (name, description, is_private, created_by, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, name, description, is_private, created_by, created_at",
		params.Name,
		params.Description,
		params.IsPrivate,
		params.CreatedBy,
		time.Now().UTC(),
	)

	var c Channel
	err := res.Scan(
		&c.Id,
		&c.Name,
		&c.Description,
		&c.IsPrivate,
		&c.CreatedBy,
		&c.CreatedAt,
	)

	return c, storeError(err)
}

func (db *PgStore) GetChannels() ([]Channel, error) {
	rows, err := db.conn.Query(
		"SELECT c.id, c.name, c.description, c.is_private, c.created_by, c.created_at, u.username " +
			"FROM channels c LEFT JOIN users u ON c.created_by = u.id " +
			"ORDER BY c.created_at DESC",
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	var channels = make([]Channel, 0)
	for rows.Next() {
		var c Channel
		if err = rows.Scan(&c.Id, &c.Name, &c.Description, &c.IsPrivate, &c.CreatedBy, &c.CreatedAt, &c.CreatorName); err != nil {
			break
		}

		channels = append(channels, c)
	}

	return channels, storeError(err)
}

func (db *PgStore) GetChannel(id int) (Channel, error) {
	row := db.conn.QueryRow(
		"SELECT c.id, c.name, c.description, c.is_private, c.created_by, c.created_at, u.username "+
			"FROM channels c LEFT JOIN users u ON c.created_by = u.id "+
			"WHERE c.id = $1 LIMIT 1",
		id,
	)

	var c Channel
	err := row.Scan(
		&c.Id,
		&c.Name,
		&c.Description,
		&c.IsPrivate,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.CreatorName,
	)

	return c, storeError(err)
}

// DeleteChannel removes a channel together with its messages and their
// reactions in one transaction.
func (db *PgStore) DeleteChannel(id int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec(
		"DELETE FROM reactions WHERE message_id IN (SELECT id FROM messages WHERE channel_id = $1)",
		id,
	)
	if err != nil {
		return storeError(err)
	}

	_, err = tx.Exec("DELETE FROM messages WHERE channel_id = $1", id)
	if err != nil {
		return storeError(err)
	}

	res, err := tx.Exec("DELETE FROM channels WHERE id = $1", id)
	if err != nil {
		return storeError(err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrNotFound
		return err
	}

	return tx.Commit()
}

func (db *PgStore) CreateMessage(params CreateMessageParams) (Message, error) {
	res := db.conn.QueryRow(
		"INSERT INTO messages (channel_id, user_id, content, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, channel_id, user_id, content, is_edited, created_at",
		params.ChannelId,
		params.UserId,
		params.Content,
		time.Now().UTC(),
	)

	var m Message
	err := res.Scan(
		&m.Id,
		&m.ChannelId,
		&m.UserId,
		&m.Content,
		&m.IsEdited,
		&m.CreatedAt,
	)

	return m, storeError(err)
}

func (db *PgStore) GetMessage(id int) (Message, error) {
	row := db.conn.QueryRow(getMessageQuery, id)

	var m Message
	err := row.Scan(
		&m.Id,
		&m.ChannelId,
		&m.UserId,
		&m.Content,
		&m.IsEdited,
		&m.CreatedAt,
		&m.Username,
		&m.DisplayName,
	)

	return m, storeError(err)
}

func (db *PgStore) GetMessages(channelId int) ([]Message, error) {
	rows, err := db.conn.Query(
		"SELECT m.id, m.channel_id, m.user_id, m.content, m.is_edited, m.created_at, u.username, u.display_name "+
			"FROM messages m JOIN users u ON m.user_id = u.id "+
			"WHERE m.channel_id = $1 ORDER BY m.created_at ASC",
		channelId,
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	var messages = make([]Message, 0)
	for rows.Next() {
		var m Message
		if err = rows.Scan(&m.Id, &m.ChannelId, &m.UserId, &m.Content, &m.IsEdited, &m.CreatedAt, &m.Username, &m.DisplayName); err != nil {
			break
		}

		messages = append(messages, m)
	}

	return messages, storeError(err)
}

func (db *PgStore) UpdateMessage(id int, content string) error {
	res, err := db.conn.Exec(
		"UPDATE messages SET content = $2, is_edited = TRUE WHERE id = $1",
		id,
		content,
	)
	if err != nil {
		return storeError(err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (db *PgStore) DeleteMessage(id int) error {
	res, err := db.conn.Exec("DELETE FROM messages WHERE id = $1", id)
	if err != nil {
		return storeError(err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (db *PgStore) CreateReaction(params CreateReactionParams) (Reaction, error) {
	res := db.conn.QueryRow(
		"INSERT INTO reactions (message_id, user_id, emoji, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, message_id, user_id, emoji, created_at",
		params.MessageId,
		params.UserId,
		params.Emoji,
		time.Now().UTC(),
	)

	var r Reaction
	err := res.Scan(
		&r.Id,
		&r.MessageId,
		&r.UserId,
		&r.Emoji,
		&r.CreatedAt,
	)

	return r, storeError(err)
}

func (db *PgStore) GetReactions(messageId int) ([]Reaction, error) {
	rows, err := db.conn.Query(
		"SELECT r.id, r.message_id, r.user_id, r.emoji, r.created_at, u.username "+
			"FROM reactions r JOIN users u ON r.user_id = u.id "+
			"WHERE r.message_id = $1 ORDER BY r.id",
		messageId,
	)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	var reactions = make([]Reaction, 0)
	for rows.Next() {
		var r Reaction
		if err = rows.Scan(&r.Id, &r.MessageId, &r.UserId, &r.Emoji, &r.CreatedAt, &r.Username); err != nil {
			break
		}

		reactions = append(reactions, r)
	}

	return reactions, storeError(err)
}

func (db *PgStore) DeleteReaction(id int) error {
	res, err := db.conn.Exec("DELETE FROM reactions WHERE id = $1", id)
	if err != nil {
		return storeError(err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}
