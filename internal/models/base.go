package models

import "github.com/google/uuid"

// assignID 为尚未设置主键的记录分配 UUID
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
