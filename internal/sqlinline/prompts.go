package sqlinline

const QPromptList = `--sql 2067e9ef-c96c-4868-affb-74030bfb69ae
select id, name, prompt_type, coalesce(description, ''), prompt_text, created_at, updated_at
from ai_prompts
order by name asc;
`

const QPromptGetByName = `--sql eb29da52-62f5-4abf-86b5-430077a09038
select id, name, prompt_type, coalesce(description, ''), prompt_text, created_at, updated_at
from ai_prompts
where name = $1;
`

const QPromptGetByNameAndType = `--sql 36544c2a-9cd7-4247-9e4d-aeebeed79450
select id, name, prompt_type, coalesce(description, ''), prompt_text, created_at, updated_at
from ai_prompts
where name = $1
  and prompt_type = $2;
`

const QPromptUpdate = `--sql 1c116c0a-9236-45ba-8a97-a4cf6c63d987
update ai_prompts
set prompt_text = $2,
    description = coalesce($3, description),
    updated_at = now()
where name = $1
returning id, name, prompt_type, coalesce(description, ''), prompt_text, created_at, updated_at;
`

const QPromptSeed = `--sql 91b9a3b8-d766-4fa0-9c0a-39c968e4dc4a
insert into ai_prompts (name, prompt_type, description, prompt_text)
values ($1, $2, nullif($3, ''), $4)
on conflict (name) do nothing;
`
