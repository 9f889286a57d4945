package agents

// Small builders for the JSON schemas sent as responseJsonSchema. Keeps
// each agent's schema declaration readable.

func obj(props map[string]interface{}, required ...string) map[string]interface{} {
	s := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func arr(items map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": items}
}

func str() map[string]interface{} {
	return map[string]interface{}{"type": "string"}
}

func strEnum(values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "enum": values}
}

func boolean() map[string]interface{} {
	return map[string]interface{}{"type": "boolean"}
}

func integer() map[string]interface{} {
	return map[string]interface{}{"type": "integer"}
}

func strArr() map[string]interface{} {
	return arr(str())
}
