package sqlinline

const QJobInsert = `--sql d4bdc116-6f95-491a-a5aa-2dc93b5f6f84
insert into description_jobs (
  job_id, workflow_id, subject, context, source_url, override_text, force,
  status, progress_data, started_at, updated_at, version
)
values ($1, $2, $3, $4, $5, nullif($6, ''), $7, $8, $9::jsonb, $10, $11, 1)
returning id;
`

const QJobGetByJobID = `--sql 611d7263-b876-4f2b-b424-7179f7601800
select
  id,
  job_id,
  workflow_id,
  subject,
  context,
  source_url,
  coalesce(override_text, ''),
  force,
  status,
  progress_data,
  coalesce(generated_about, ''),
  coalesce(generated_what_to_expect, ''),
  coalesce(generated_subscribe, ''),
  coalesce(generated_tags, ''),
  started_at,
  completed_at,
  updated_at,
  coalesce(error_message, ''),
  version
from description_jobs
where job_id = $1;
`

// QJobUpdate only touches jobs that have not reached a terminal status.
const QJobUpdate = `--sql 63a03eed-27a9-43a1-bd0f-71c7fc417c9e
update description_jobs
set status = $2,
    progress_data = coalesce($3::jsonb, progress_data),
    generated_about = coalesce($4, generated_about),
    generated_what_to_expect = coalesce($5, generated_what_to_expect),
    generated_subscribe = coalesce($6, generated_subscribe),
    generated_tags = coalesce($7, generated_tags),
    error_message = coalesce($8, error_message),
    completed_at = coalesce($9, completed_at),
    updated_at = now(),
    version = version + 1
where job_id = $1
  and status not in ('completed', 'failed');
`

const QJobStatus = `--sql 5d07f696-7ab2-4689-b76f-4e9fa6fdf00d
select status from description_jobs where job_id = $1;
`
