package models

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Course{},
		&Enrollment{},
		&TeacherAssignment{},
		&Note{},
		&Assignment{},
		&Submission{},
		&Notification{},
		&ActivityLog{},
		&UploadRecord{},
	}
}
