package main

// General API documentation for swaggo. Build with -tags=swagger to serve it
// under /swagger/.
//
// @title           genai API
// @version         1.0
// @description     HTTP API for streaming text generation on a local model.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
