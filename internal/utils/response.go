package utils

import "github.com/gofiber/fiber/v2"

// ListResponse is the envelope for paginated collections.
type ListResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// DataResponse is the envelope for a single resource.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// MessageResponse carries a human readable message and optional data.
type MessageResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SendList writes {data, pagination} with status 200.
func SendList(c *fiber.Ctx, data interface{}, pagination Pagination) error {
	return c.Status(fiber.StatusOK).JSON(ListResponse{
		Data:       data,
		Pagination: pagination,
	})
}

// SendData writes {data}. An optional status overrides the default 200.
func SendData(c *fiber.Ctx, data interface{}, status ...int) error {
	code := fiber.StatusOK
	if len(status) > 0 && status[0] != 0 {
		code = status[0]
	}
	return c.Status(code).JSON(DataResponse{Data: data})
}

// SendMessage writes {message, data?} with status 200.
func SendMessage(c *fiber.Ctx, message string, data ...interface{}) error {
	payload := MessageResponse{Message: message}
	if len(data) > 0 {
		payload.Data = data[0]
	}
	return c.Status(fiber.StatusOK).JSON(payload)
}

// SendError writes {error}. Status defaults to 400.
func SendError(c *fiber.Ctx, message string, status ...int) error {
	code := fiber.StatusBadRequest
	if len(status) > 0 && status[0] != 0 {
		code = status[0]
	}
	if message == "" {
		message = "error"
	}
	return c.Status(code).JSON(ErrorResponse{Error: message})
}
