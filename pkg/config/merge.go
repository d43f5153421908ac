package config

import "dario.cat/mergo"

// mergeAutomations merges built-in and user-defined automation rules.
// User-defined rules override built-in rules of the same name; fields the
// user leaves zero-valued fall back to the built-in rule's value via
// mergo, so a user can tweak just the thresholds of a built-in rule
// without having to restate event_type/model.
func mergeAutomations(builtin, user map[string]AutomationConfig) (map[string]*AutomationConfig, error) {
	result := make(map[string]*AutomationConfig, len(builtin)+len(user))
	for name, rule := range builtin {
		ruleCopy := rule
		result[name] = &ruleCopy
	}
	for name, userRule := range user {
		userCopy := userRule
		if base, ok := result[name]; ok {
			merged := *base
			if err := mergo.Merge(&merged, userCopy, mergo.WithOverride); err != nil {
				return nil, err
			}
			result[name] = &merged
			continue
		}
		result[name] = &userCopy
	}
	return result, nil
}

// mergeLLMProviders merges built-in and user-defined LLM provider
// configurations. User-defined providers override built-in providers with
// the same name.
func mergeLLMProviders(builtin, user map[string]LLMProviderConfig) map[string]*LLMProviderConfig {
	result := make(map[string]*LLMProviderConfig, len(builtin)+len(user))
	for name, p := range builtin {
		pCopy := p
		result[name] = &pCopy
	}
	for name, p := range user {
		pCopy := p
		result[name] = &pCopy
	}
	return result
}

// mergeAgents merges built-in and user-defined agent graph configurations,
// the same override-with-fallback semantics as mergeAutomations.
func mergeAgents(builtin, user map[string]AgentConfig) (map[string]*AgentConfig, error) {
	result := make(map[string]*AgentConfig, len(builtin)+len(user))
	for name, a := range builtin {
		aCopy := a
		result[name] = &aCopy
	}
	for name, userAgent := range user {
		userCopy := userAgent
		if base, ok := result[name]; ok {
			merged := *base
			if err := mergo.Merge(&merged, userCopy, mergo.WithOverride); err != nil {
				return nil, err
			}
			result[name] = &merged
			continue
		}
		result[name] = &userCopy
	}
	return result, nil
}
