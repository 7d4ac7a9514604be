package types

// CtxKey тип ключей контекста команд клиента
type CtxKey string

// ClientAppKey ключ, под которым в контексте команд лежит *client.App
const ClientAppKey CtxKey = "client-app"
