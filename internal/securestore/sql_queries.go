// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package securestore

const (
	upsertAccount = `
		INSERT INTO account (
			id, user_id, primary_key, secret_key, token,
			device_id, device_name, device_type, state
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id     = excluded.user_id,
			primary_key = excluded.primary_key,
			secret_key  = excluded.secret_key,
			token       = excluded.token,
			device_id   = excluded.device_id,
			device_name = excluded.device_name,
			device_type = excluded.device_type,
			state       = excluded.state;`

	selectAccount = `
		SELECT user_id, primary_key, secret_key, token,
		       device_id, device_name, device_type, state
		FROM account
		WHERE id = ?;`

	deleteAccount = `DELETE FROM account WHERE id = ?;`
)
