package api

import "tasktrack-api/domain"

const (
	userBodyMaxSize = 16 * 1024 // 16 KiB
	taskBodyMaxSize = 64 * 1024 // 64 KiB
)

type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is returned by register and login.
type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// listTasksResponse is one page of tasks plus pagination metadata.
type listTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
	Total int64         `json:"total"`
}
