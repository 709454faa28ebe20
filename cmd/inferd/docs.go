package main

// General API documentation for swaggo. Run `swag init -g cmd/inferd/main.go`
// to regenerate docs.
//
// @title           inferd API
// @version         1.0
// @description     HTTP API for batched text-generation inference.
//
// @contact.name   inferd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
