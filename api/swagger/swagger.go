package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Central do Cidadão API",
        "description": "Citizen services backend: school enrollments with seat control, municipal service requests and notifications",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Citizens", "description": "Citizen profile management"},
        {"name": "Schools", "description": "School directory and seat ledger"},
        {"name": "Enrollments", "description": "Seat-bounded school enrollment workflow"},
        {"name": "ServiceRequests", "description": "Municipal service ticketing"},
        {"name": "Notifications", "description": "Citizen notification inbox"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/cidadaos": {
            "get": {
                "tags": ["Citizens"],
                "summary": "List citizens",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Citizens"],
                "summary": "Register citizen",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCitizenRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "CPF or email already registered"}
                }
            }
        },
        "/cidadaos/{id}": {
            "get": {
                "tags": ["Citizens"],
                "summary": "Get citizen",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Citizens"],
                "summary": "Update citizen profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCitizenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Citizens"],
                "summary": "Remove citizen",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Removed"}
                }
            }
        },
        "/cidadaos/cpf/{cpf}": {
            "get": {
                "tags": ["Citizens"],
                "summary": "Get citizen by CPF",
                "parameters": [
                    {"name": "cpf", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/cidadaos/{id}/matriculas": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List a citizen's enrollments",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cidadaos/{id}/notificacoes": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List a citizen's notifications",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "naoLidas", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cidadaos/{id}/notificacoes/nao-lidas": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Unread notification count",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cidadaos/{id}/notificacoes/lidas": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark all notifications as read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Marked"}
                }
            }
        },
        "/notificacoes/{id}/lida": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Marked"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/escolas": {
            "get": {
                "tags": ["Schools"],
                "summary": "List schools",
                "parameters": [
                    {"name": "nivel", "in": "query", "type": "string"},
                    {"name": "bairro", "in": "query", "type": "string"},
                    {"name": "nome", "in": "query", "type": "string"},
                    {"name": "comVagas", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schools"],
                "summary": "Register school",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSchoolRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/escolas/{id}": {
            "get": {
                "tags": ["Schools"],
                "summary": "Get school with seat figures",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/escolas/{id}/vagas": {
            "get": {
                "tags": ["Schools"],
                "summary": "Remaining seats",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Schools"],
                "summary": "Adjust seat total",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSeatsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Total below seats already taken"}
                }
            }
        },
        "/escolas/{id}/classificacao": {
            "get": {
                "tags": ["Schools"],
                "summary": "Occupancy classification",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "DISPONIVEL, LIMITADO or LOTADO", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/escolas/relatorio/ocupacao.csv": {
            "get": {
                "tags": ["Schools"],
                "summary": "Download the seat occupancy report",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV content"}
                }
            }
        },
        "/matriculas": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "parameters": [
                    {"name": "cidadaoId", "in": "query", "type": "string"},
                    {"name": "escolaId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Request a school enrollment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "School has no seats available"}
                }
            }
        },
        "/matriculas/{id}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Get enrollment detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/matriculas/protocolo/{protocolo}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Track an enrollment by protocol",
                "parameters": [
                    {"name": "protocolo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/matriculas/{id}/status": {
            "patch": {
                "tags": ["Enrollments"],
                "summary": "Change enrollment status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionEnrollmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Seats exhausted or concurrent update"},
                    "422": {"description": "Transition not allowed"}
                }
            }
        },
        "/matriculas/{id}/comprovante": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Download the enrollment receipt PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF content"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/solicitacoes": {
            "get": {
                "tags": ["ServiceRequests"],
                "summary": "List service requests",
                "parameters": [
                    {"name": "cidadaoId", "in": "query", "type": "string"},
                    {"name": "tipo", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["ServiceRequests"],
                "summary": "Open a service request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateServiceRequestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/solicitacoes/{id}": {
            "get": {
                "tags": ["ServiceRequests"],
                "summary": "Get service request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/solicitacoes/protocolo/{protocolo}": {
            "get": {
                "tags": ["ServiceRequests"],
                "summary": "Track a service request by protocol",
                "parameters": [
                    {"name": "protocolo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/solicitacoes/{id}/status": {
            "patch": {
                "tags": ["ServiceRequests"],
                "summary": "Change service request status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateRequestStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateCitizenRequest": {
            "type": "object",
            "required": ["nome", "cpf", "email"],
            "properties": {
                "nome": {"type": "string"},
                "cpf": {"type": "string"},
                "email": {"type": "string"},
                "telefone": {"type": "string"},
                "cep": {"type": "string"},
                "endereco": {"type": "string"},
                "numero": {"type": "string"},
                "complemento": {"type": "string"},
                "bairro": {"type": "string"},
                "cidade": {"type": "string"},
                "estado": {"type": "string"}
            }
        },
        "UpdateCitizenRequest": {
            "type": "object",
            "required": ["nome"],
            "properties": {
                "nome": {"type": "string"},
                "telefone": {"type": "string"},
                "cep": {"type": "string"},
                "endereco": {"type": "string"},
                "numero": {"type": "string"},
                "complemento": {"type": "string"},
                "bairro": {"type": "string"},
                "cidade": {"type": "string"},
                "estado": {"type": "string"}
            }
        },
        "CreateSchoolRequest": {
            "type": "object",
            "required": ["nome", "nivel_ensino"],
            "properties": {
                "nome": {"type": "string"},
                "endereco": {"type": "string"},
                "bairro": {"type": "string"},
                "cidade": {"type": "string"},
                "telefone": {"type": "string"},
                "nivel_ensino": {"type": "string", "enum": ["INFANTIL", "FUNDAMENTAL_I", "FUNDAMENTAL_II", "MEDIO"]},
                "vagas_totais": {"type": "integer"}
            }
        },
        "UpdateSeatsRequest": {
            "type": "object",
            "required": ["vagas_totais"],
            "properties": {
                "vagas_totais": {"type": "integer"}
            }
        },
        "CreateEnrollmentRequest": {
            "type": "object",
            "required": ["cidadao_id", "escola_id", "nome_aluno", "nivel_ensino"],
            "properties": {
                "cidadao_id": {"type": "string"},
                "escola_id": {"type": "string"},
                "nome_aluno": {"type": "string"},
                "data_nascimento": {"type": "string", "format": "date"},
                "nivel_ensino": {"type": "string", "enum": ["INFANTIL", "FUNDAMENTAL_I", "FUNDAMENTAL_II", "MEDIO"]},
                "serie": {"type": "string"},
                "observacoes": {"type": "string"}
            }
        },
        "TransitionEnrollmentRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["PENDENTE", "EM_ANALISE", "APROVADA", "REJEITADA", "CANCELADA"]}
            }
        },
        "CreateServiceRequestRequest": {
            "type": "object",
            "required": ["cidadao_id", "tipo_servico", "descricao"],
            "properties": {
                "cidadao_id": {"type": "string"},
                "tipo_servico": {"type": "string", "enum": ["PODA", "ILUMINACAO", "OBRAS", "LIMPEZA"]},
                "descricao": {"type": "string"},
                "endereco": {"type": "string"},
                "bairro": {"type": "string"},
                "ponto_referencia": {"type": "string"},
                "prioridade": {"type": "string", "enum": ["BAIXA", "MEDIA", "ALTA"]}
            }
        },
        "UpdateRequestStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["ABERTA", "EM_ANALISE", "EM_EXECUCAO", "CONCLUIDA", "CANCELADA"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
