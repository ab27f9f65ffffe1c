package main

// General API documentation for swaggo. `make swagger-gen` writes ./docs and
// `make build-swagger` builds a binary serving it under /swagger/.
//
// @title           majin API
// @version         1.0
// @description     HTTP API that routes prompts to hosted LLM providers and compares their completions.
//
// @contact.name   majin maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
